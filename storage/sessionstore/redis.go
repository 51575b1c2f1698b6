package sessionstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-portal/core/session"
)

// RedisBackend stores each session as two keys, `<prefix><sid>:auth_token` and
// `<prefix><sid>:auth_user`, written in one MULTI/EXEC with the same TTL.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend creates a Redis backend. A zero ttl keeps sessions until logout.
func NewRedisBackend(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (b *RedisBackend) For(sid string) session.Persister {
	return &redisPersister{backend: b, sid: sid}
}

type redisPersister struct {
	backend *RedisBackend
	sid     string
}

func (p *redisPersister) keys() (token, ident string) {
	base := p.backend.prefix + p.sid + ":"
	return base + session.TokenKey, base + session.IdentityKey
}

func (p *redisPersister) Load(ctx context.Context) (session.Record, error) {
	if p.sid == "" {
		return session.Record{}, session.ErrNotPersisted
	}
	tokenKey, identKey := p.keys()
	vals, err := p.backend.client.MGet(ctx, tokenKey, identKey).Result()
	if err != nil {
		return session.Record{}, errors.Wrap(err, "redis mget")
	}

	token, _ := vals[0].(string)
	ident, _ := vals[1].(string)
	if token == "" && ident == "" {
		return session.Record{}, session.ErrNotPersisted
	}
	return session.Record{Token: token, Identity: ident}, nil
}

func (p *redisPersister) Save(ctx context.Context, rec session.Record) error {
	if p.sid == "" {
		return errors.New("session id cannot be empty")
	}
	tokenKey, identKey := p.keys()
	_, err := p.backend.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKey, rec.Token, p.backend.ttl)
		pipe.Set(ctx, identKey, rec.Identity, p.backend.ttl)
		return nil
	})
	return errors.Wrap(err, "redis save session")
}

func (p *redisPersister) Remove(ctx context.Context) error {
	if p.sid == "" {
		return nil // nothing to delete
	}
	tokenKey, identKey := p.keys()
	return errors.Wrap(p.backend.client.Del(ctx, tokenKey, identKey).Err(), "redis del session")
}
