// Package ratelimit bounds how often a client identifier may submit the
// lead form. The algorithm is a fixed-window counter: approximate by design,
// a burst straddling a window boundary can pass up to twice the quota.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a client identifier may perform another submission.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindow is a process-local fixed-window counter keyed by client
// identifier. Only authoritative within a single instance; multi-instance
// deployments should use RedisFixedWindow instead.
type FixedWindow struct {
	mu      sync.Mutex
	windows map[string]*window
	max     int
	length  time.Duration
	now     func() time.Time
}

// NewFixedWindow creates a limiter allowing max submissions per window length
// per key.
func NewFixedWindow(max int, length time.Duration) *FixedWindow {
	fw := &FixedWindow{
		windows: make(map[string]*window),
		max:     max,
		length:  length,
		now:     time.Now,
	}
	// Periodically evict expired windows to prevent memory growth.
	go fw.cleanup()
	return fw
}

// Allow counts the current attempt and reports whether it is within quota.
// A denied attempt stays counted.
func (f *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	w, ok := f.windows[key]
	if !ok || now.After(w.resetAt) {
		f.windows[key] = &window{count: 1, resetAt: now.Add(f.length)}
		return true, nil
	}

	w.count++
	return w.count <= f.max, nil
}

func (f *FixedWindow) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		f.mu.Lock()
		now := f.now()
		for key, w := range f.windows {
			if now.After(w.resetAt) {
				delete(f.windows, key)
			}
		}
		f.mu.Unlock()
	}
}
