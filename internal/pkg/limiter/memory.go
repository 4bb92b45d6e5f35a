package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryFixedWindow is a process-local fixed-window limiter.
type MemoryFixedWindow struct {
	mu      sync.Mutex
	windows map[string]window
	clk     clock.Clocker
	cfg     Config
}

// NewMemoryFixedWindow creates an in-process fixed-window limiter.
func NewMemoryFixedWindow(clk clock.Clocker, cfg Config) *MemoryFixedWindow {
	return &MemoryFixedWindow{
		windows: make(map[string]window),
		clk:     clk,
		cfg:     cfg,
	}
}

func (l *MemoryFixedWindow) Allow(_ context.Context, key string) (bool, error) {
	now := l.clk.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = window{resetAt: now.Add(l.cfg.Window)}
	}

	w.count++
	l.windows[key] = w

	return w.count <= l.cfg.Limit, nil
}
