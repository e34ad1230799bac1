package resilience

import (
	"sync"
	"time"
)

// WindowLimiter is a per-key fixed-window rate limiter. The window resets
// lazily on the first request after expiry; there is no background timer.
// Counters are in-memory and best-effort: they reset on process restart and
// are not shared across replicas, which is acceptable for a soft limit.
type WindowLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	now    func() time.Time
	states map[string]*windowState
}

type windowState struct {
	startedAt time.Time
	count     int
}

func NewWindowLimiter(max int, window time.Duration) *WindowLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &WindowLimiter{
		max:    max,
		window: window,
		now:    time.Now,
		states: make(map[string]*windowState),
	}
}

// Allow reports whether one more request is permitted for key, counting it if
// so.
func (l *WindowLimiter) Allow(key string) bool {
	return l.AllowN(key, l.max, l.window)
}

// AllowN is Allow with a per-call limit, for keys carrying their own
// configured budget (each data source declares its own).
func (l *WindowLimiter) AllowN(key string, max int, window time.Duration) bool {
	if max < 1 {
		max = l.max
	}
	if window <= 0 {
		window = l.window
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, ok := l.states[key]
	if !ok || now.Sub(state.startedAt) >= window {
		l.states[key] = &windowState{startedAt: now, count: 1}
		return true
	}

	if state.count >= max {
		return false
	}
	state.count++
	return true
}

// Remaining reports how many requests are left in the current window.
func (l *WindowLimiter) Remaining(key string, max int, window time.Duration) int {
	if max < 1 {
		max = l.max
	}
	if window <= 0 {
		window = l.window
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[key]
	if !ok || l.now().Sub(state.startedAt) >= window {
		return max
	}
	remaining := max - state.count
	if remaining < 0 {
		return 0
	}
	return remaining
}
