package ratelimiter

import (
	"sync"
	"time"
)

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

// Limiter decides whether a client may make another request right now.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]*window //string:client IP
	limit   int
	window  time.Duration
	now     func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

func NewFixedWindowLimiter(limit int, w time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  w,
		now:     time.Now,
	}
}

// Allow counts a request for key. When the window is full it returns false
// and how long until the window resets.
func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	win, exists := rl.clients[key]
	if !exists || !now.Before(win.resetAt) {
		rl.clients[key] = &window{count: 1, resetAt: now.Add(rl.window)}
		return true, 0
	}

	if win.count < rl.limit {
		win.count++
		return true, 0
	}

	return false, win.resetAt.Sub(now)
}

// Cleanup drops windows that have already expired. Run it periodically so
// one-off clients do not pile up.
func (rl *FixedWindowRateLimiter) Cleanup() int {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	removed := 0
	for key, win := range rl.clients {
		if !now.Before(win.resetAt) {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}
