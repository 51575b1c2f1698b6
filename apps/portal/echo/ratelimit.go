package echoportal

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterCleanupInterval = 5 * time.Minute

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// loginLimiter throttles login attempts per client address.
// Entries idle for twice the cleanup interval are dropped on the next sweep.
type loginLimiter struct {
	limit rate.Limit
	burst int

	mutex     sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

// newLoginLimiter allows `perSecond` attempts per client with bursts of `burst`.
// A non positive rate disables throttling.
func newLoginLimiter(perSecond float64, burst int) *loginLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &loginLimiter{
		limit:     limit,
		burst:     burst,
		clients:   make(map[string]*clientLimiter),
		lastSweep: time.Now(),
	}
}

func (l *loginLimiter) Allow(client string) bool {
	if l.limit == rate.Inf {
		return true
	}
	now := time.Now()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if now.Sub(l.lastSweep) > limiterCleanupInterval {
		l.sweep(now)
	}
	cl, ok := l.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = cl
	}
	cl.lastAccess = now
	return cl.limiter.AllowN(now, 1)
}

func (l *loginLimiter) sweep(now time.Time) {
	for client, cl := range l.clients {
		if now.Sub(cl.lastAccess) > 2*limiterCleanupInterval {
			delete(l.clients, client)
		}
	}
	l.lastSweep = now
}
