package utils

import (
	"sync"
	"time"
)

const (
	loginBackoffBase = 5 * time.Second
	loginBackoffMax  = 60 * time.Second
)

// LoginLimiter throttles admin login attempts with exponential backoff. The
// delay doubles on each consecutive failure and resets on success. A single
// limiter guards the single admin credential, so there is no per-user state.
type LoginLimiter struct {
	mu          sync.Mutex
	failures    int
	nextAllowed time.Time
}

func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{}
}

// Allow reports whether a login attempt may proceed now, and if not, how long
// the caller must wait.
func (l *LoginLimiter) Allow() (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if now.Before(l.nextAllowed) {
		return false, l.nextAllowed.Sub(now)
	}
	return true, 0
}

// Failure records a failed attempt and arms the next backoff window.
func (l *LoginLimiter) Failure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	delay := loginBackoffBase
	for i := 0; i < l.failures && delay < loginBackoffMax; i++ {
		delay *= 2
	}
	if delay > loginBackoffMax {
		delay = loginBackoffMax
	}
	l.failures++
	l.nextAllowed = time.Now().Add(delay)
}

// Success clears the failure streak.
func (l *LoginLimiter) Success() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = 0
	l.nextAllowed = time.Time{}
}
