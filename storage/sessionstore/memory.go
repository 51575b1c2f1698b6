// Package sessionstore provides session.Persister backends.
//
// Backends serving many browsers (memory, redis) hand out one Persister per session id
// through For. The file and keyring persisters hold the single session of a CLI user.
package sessionstore

import (
	"context"
	"sync"

	"github.com/trezcool/masomo-portal/core/session"
)

// Backend hands out the Persister of one browser session.
type Backend interface {
	For(sid string) session.Persister
}

// MemoryBackend keeps sessions in process memory. Sessions do not survive a restart.
type MemoryBackend struct {
	mutex sync.RWMutex
	table map[string]session.Record
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{table: make(map[string]session.Record)}
}

func (b *MemoryBackend) For(sid string) session.Persister {
	return &memoryPersister{backend: b, sid: sid}
}

// Len is the number of stored sessions.
func (b *MemoryBackend) Len() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.table)
}

// NewMemoryPersister returns a standalone in-memory Persister.
func NewMemoryPersister() session.Persister {
	return NewMemoryBackend().For("")
}

type memoryPersister struct {
	backend *MemoryBackend
	sid     string
}

func (p *memoryPersister) Load(_ context.Context) (session.Record, error) {
	p.backend.mutex.RLock()
	defer p.backend.mutex.RUnlock()

	rec, ok := p.backend.table[p.sid]
	if !ok {
		return session.Record{}, session.ErrNotPersisted
	}
	return rec, nil
}

func (p *memoryPersister) Save(_ context.Context, rec session.Record) error {
	p.backend.mutex.Lock()
	defer p.backend.mutex.Unlock()
	p.backend.table[p.sid] = rec
	return nil
}

func (p *memoryPersister) Remove(_ context.Context) error {
	p.backend.mutex.Lock()
	defer p.backend.mutex.Unlock()
	delete(p.backend.table, p.sid)
	return nil
}
