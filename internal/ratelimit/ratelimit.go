// Package ratelimit provides the fixed-window gate shared by sponsorship
// lookups and people search.
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultMaxPerWindow = 10
	DefaultWindow       = 60 * time.Second
)

// Window is a fixed-window counter that resets lazily: the window restarts
// only when Allow observes that the previous one has expired. Allow never
// counts; callers that actually issue a request call RecordRequest.
//
// The state lives for the process (one Window per agent session) and is not
// persisted.
type Window struct {
	mu           sync.Mutex
	windowStart  time.Time
	requestCount int
	maxPerWindow int
	window       time.Duration
	now          func() time.Time
}

type Option func(*Window)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Window) { w.now = now }
}

func New(maxPerWindow int, window time.Duration, opts ...Option) *Window {
	if maxPerWindow <= 0 {
		maxPerWindow = DefaultMaxPerWindow
	}
	if window <= 0 {
		window = DefaultWindow
	}
	w := &Window{
		maxPerWindow: maxPerWindow,
		window:       window,
		now:          time.Now,
	}
	for _, o := range opts {
		o(w)
	}
	w.windowStart = w.now()
	return w
}

// Allow is non-blocking. Callers decide whether to wait, skip or show a
// cooldown.
func (w *Window) Allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.Sub(w.windowStart) > w.window {
		w.requestCount = 0
		w.windowStart = now
	}
	return w.requestCount < w.maxPerWindow
}

func (w *Window) RecordRequest() {
	w.mu.Lock()
	w.requestCount++
	w.mu.Unlock()
}

// Cooldown is how long until the current window expires, or zero when a
// request would be allowed right now.
func (w *Window) Cooldown() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.requestCount < w.maxPerWindow {
		return 0
	}
	left := w.window - w.now().Sub(w.windowStart)
	if left < 0 {
		return 0
	}
	return left
}

type Status struct {
	WindowStart  time.Time     `json:"windowStart"`
	RequestCount int           `json:"requestCount"`
	MaxPerWindow int           `json:"maxPerWindow"`
	Window       time.Duration `json:"window"`
}

func (w *Window) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Status{
		WindowStart:  w.windowStart,
		RequestCount: w.requestCount,
		MaxPerWindow: w.maxPerWindow,
		Window:       w.window,
	}
}

// SetLimits changes the cap and window length in place. The current count
// and window start are kept; non-positive values keep the old setting.
func (w *Window) SetLimits(maxPerWindow int, window time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if maxPerWindow > 0 {
		w.maxPerWindow = maxPerWindow
	}
	if window > 0 {
		w.window = window
	}
}
