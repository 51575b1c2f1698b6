package sessionstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"

	"github.com/trezcool/masomo-portal/core/session"
)

// KeyringPersister keeps the session pair in the OS keychain/credential manager,
// as two secrets under the same service.
type KeyringPersister struct {
	service string
}

var _ session.Persister = (*KeyringPersister)(nil)

func NewKeyringPersister(service string) *KeyringPersister {
	return &KeyringPersister{service: service}
}

func (p *KeyringPersister) Load(_ context.Context) (session.Record, error) {
	token, err := p.get(session.TokenKey)
	if err != nil {
		return session.Record{}, err
	}
	ident, err := p.get(session.IdentityKey)
	if err != nil {
		return session.Record{}, err
	}
	if token == "" && ident == "" {
		return session.Record{}, session.ErrNotPersisted
	}
	return session.Record{Token: token, Identity: ident}, nil
}

// Save writes the identity first and the token last; if the token cannot be written
// the identity is rolled back so the pair is never half present.
func (p *KeyringPersister) Save(_ context.Context, rec session.Record) error {
	if err := keyring.Set(p.service, session.IdentityKey, rec.Identity); err != nil {
		return errors.Wrap(err, "saving identity to keyring")
	}
	if err := keyring.Set(p.service, session.TokenKey, rec.Token); err != nil {
		_ = p.delete(session.IdentityKey)
		return errors.Wrap(err, "saving token to keyring")
	}
	return nil
}

func (p *KeyringPersister) Remove(_ context.Context) error {
	// token first: without it a leftover identity is never restored
	if err := p.delete(session.TokenKey); err != nil {
		return err
	}
	return p.delete(session.IdentityKey)
}

func (p *KeyringPersister) get(key string) (string, error) {
	val, err := keyring.Get(p.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", errors.Wrapf(err, "loading %s from keyring", key)
	}
	return val, nil
}

func (p *KeyringPersister) delete(key string) error {
	if err := keyring.Delete(p.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrapf(err, "deleting %s from keyring", key)
	}
	return nil
}
