package sessionstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/session"
)

// FilePersister keeps the session pair in one JSON file, eg. ~/.config/masomo/session.json.
// The file is replaced atomically so both values always change together.
type FilePersister struct {
	path string
}

var _ session.Persister = (*FilePersister)(nil)

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

type fileRecord struct {
	Token    string `json:"auth_token"`
	Identity string `json:"auth_user"`
}

func (p *FilePersister) Load(_ context.Context) (session.Record, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return session.Record{}, session.ErrNotPersisted
		}
		return session.Record{}, errors.Wrap(err, "reading session file")
	}

	var rec fileRecord
	if err = json.Unmarshal(data, &rec); err != nil {
		// half a pair: the store drops it as corrupt
		return session.Record{Identity: string(data)}, nil
	}
	if rec.Token == "" && rec.Identity == "" {
		return session.Record{}, session.ErrNotPersisted
	}
	return session.Record{Token: rec.Token, Identity: rec.Identity}, nil
}

func (p *FilePersister) Save(_ context.Context, rec session.Record) error {
	data, err := json.MarshalIndent(fileRecord{Token: rec.Token, Identity: rec.Identity}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session file")
	}

	dir := filepath.Dir(p.path)
	if err = os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "creating session directory")
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Wrap(err, "creating temp session file")
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing temp session file")
	}
	if err = tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "chmod temp session file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp session file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), p.path), "replacing session file")
}

func (p *FilePersister) Remove(_ context.Context) error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}
