package user

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdle    = 10 * time.Minute
	limiterMaxKeys = 10000
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter throttles failed logins per username with a token bucket.
// Each failure spends a token; a key is blocked while its bucket is empty.
type Limiter struct {
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
}

// NewLimiter allows perMinute failed attempts per key, refilled evenly
// over a minute. perMinute <= 0 disables throttling.
func NewLimiter(perMinute int) *Limiter {
	l := &Limiter{entries: make(map[string]*limiterEntry), limit: rate.Inf}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
		l.burst = perMinute
	}
	return l
}

// Blocked reports whether key has no attempts left.
func (l *Limiter) Blocked(key string) bool {
	if l == nil || l.limit == rate.Inf {
		return false
	}
	return l.get(key).Tokens() < 1
}

// Fail records a failed attempt for key.
func (l *Limiter) Fail(key string) {
	if l == nil || l.limit == rate.Inf {
		return
	}
	l.get(key).Allow()
}

// Reset forgets key, e.g. after a successful login.
func (l *Limiter) Reset(key string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.entries[key]
	if !ok {
		if len(l.entries) >= limiterMaxKeys {
			l.prune(now)
		}
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// prune drops idle keys. Callers hold mu.
func (l *Limiter) prune(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) > limiterIdle {
			delete(l.entries, k)
		}
	}
}
