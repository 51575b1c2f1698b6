package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
)

// Persisted key names; both values are written and removed together.
const (
	TokenKey    = "auth_token"
	IdentityKey = "auth_user"
)

var (
	// ErrNotPersisted is returned by Persister.Load when nothing (or only half of the pair) is stored.
	ErrNotPersisted = errors.New("no persisted session")
	// ErrIncompleteSession is returned by Store.Set for an empty token or an identity without ID.
	ErrIncompleteSession = errors.New("identity and token are both required")
	// ErrCorruptSession marks a persisted identity that does not decode.
	ErrCorruptSession = errors.New("persisted session corrupt")
)

// Record is the persisted form of a session: the opaque token and the JSON encoded Identity.
type Record struct {
	Token    string
	Identity string
}

// Persister stores one Record. Implementations must write and remove both values as a unit.
type Persister interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
	Remove(ctx context.Context) error
}

// State of a Store as seen by the route guard.
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of a Store. Identity is nil unless authenticated.
type Snapshot struct {
	State    State
	Identity *Identity
	Token    string
}

// Store is the single source of truth for who is signed in.
// It starts Loading and leaves that state once Restore returns.
type Store struct {
	persister Persister
	logger    core.Logger

	mu   sync.RWMutex
	snap Snapshot
}

func NewStore(persister Persister, logger core.Logger) *Store {
	if logger == nil {
		logger = core.NopLogger
	}
	return &Store{
		persister: persister,
		logger:    logger,
		snap:      Snapshot{State: StateLoading},
	}
}

// Restore loads the persisted session, if any. It never leaves the Store Loading;
// the returned error is only for persister failures the caller may want to log.
func (s *Store) Restore(ctx context.Context) error {
	snap := Snapshot{State: StateUnauthenticated}
	defer s.swap(&snap)

	rec, err := s.persister.Load(ctx)
	if err != nil {
		if errors.Cause(err) == ErrNotPersisted {
			return nil
		}
		return errors.Wrap(err, "loading persisted session")
	}

	ident, err := decodeRecord(rec)
	if err != nil {
		s.logger.Warn(ErrCorruptSession.Error(), err)
		if rmErr := s.persister.Remove(ctx); rmErr != nil {
			return errors.Wrap(rmErr, "removing corrupt session")
		}
		return nil
	}

	snap = Snapshot{State: StateAuthenticated, Identity: &ident, Token: rec.Token}
	return nil
}

// Set replaces the current session and persists it. Nothing changes if persisting fails.
func (s *Store) Set(ctx context.Context, ident Identity, token string) error {
	if token == "" || !ident.valid() {
		return ErrIncompleteSession
	}
	data, err := json.Marshal(ident)
	if err != nil {
		return errors.Wrap(err, "encoding identity")
	}
	if err = s.persister.Save(ctx, Record{Token: token, Identity: string(data)}); err != nil {
		return errors.Wrap(err, "persisting session")
	}
	s.swap(&Snapshot{State: StateAuthenticated, Identity: &ident, Token: token})
	return nil
}

// Clear signs out. Memory is always cleared; the error reports a failed removal of the persisted copy.
func (s *Store) Clear(ctx context.Context) error {
	s.swap(&Snapshot{State: StateUnauthenticated})
	return errors.Wrap(s.persister.Remove(ctx), "removing persisted session")
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	if snap.Identity != nil {
		ident := *snap.Identity
		snap.Identity = &ident
	}
	return snap
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.State
}

// IsAuthenticated is true iff both an Identity and a token are held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Identity != nil && s.snap.Token != ""
}

func (s *Store) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.Identity == nil {
		return Identity{}, false
	}
	return *s.snap.Identity, true
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Token
}

func (s *Store) swap(snap *Snapshot) {
	s.mu.Lock()
	s.snap = *snap
	s.mu.Unlock()
}

func decodeRecord(rec Record) (Identity, error) {
	if rec.Token == "" || rec.Identity == "" {
		return Identity{}, errors.New("half of the session pair is missing")
	}
	var ident Identity
	if err := json.Unmarshal([]byte(rec.Identity), &ident); err != nil {
		return Identity{}, errors.Wrap(err, "decoding identity")
	}
	if !ident.valid() {
		return Identity{}, errors.New("identity has no id")
	}
	ident.Role = NormalizeRole(string(ident.Role))
	return ident, nil
}
