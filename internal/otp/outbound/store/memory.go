package store

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

const janitorInterval = 30 * time.Second

// Memory is a process-local Store backed by a mutex-guarded map.
//
// A background janitor sweeps entries whose validity window has passed, so the
// map does not grow with abandoned challenges.
type Memory struct {
	mu    sync.Mutex
	items map[string]entity.Challenge
	clk   clock.Clocker
	stop  chan struct{}
	once  sync.Once
}

// NewMemory creates a Memory store and starts its janitor.
func NewMemory(clk clock.Clocker) *Memory {
	m := &Memory{
		items: make(map[string]entity.Challenge),
		clk:   clk,
		stop:  make(chan struct{}),
	}

	go m.janitor()

	return m
}

func (m *Memory) Put(_ context.Context, ch entity.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[ch.Destination] = ch

	return nil
}

func (m *Memory) Lookup(_ context.Context, destination string) (*entity.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.items[destination]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return &ch, nil
}

func (m *Memory) Consume(_ context.Context, destination, codeHash string) (entity.VerificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.items[destination]
	if !ok {
		return entity.ResultNotFound, nil
	}

	now := m.clk.Now()
	if ch.Consumed || !now.Before(ch.ExpiresAt) {
		return entity.ResultExpired, nil
	}

	if ch.CodeHash != codeHash {
		return entity.ResultInvalid, nil
	}

	// Keep the consumed record until its window closes so a losing racer
	// observes Expired rather than NotFound.
	ch.Consumed = true
	m.items[destination] = ch

	return entity.ResultValid, nil
}

// Close stops the janitor. The store remains usable but no longer sweeps.
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	now := m.clk.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for dest, ch := range m.items {
		if !now.Before(ch.ExpiresAt) {
			delete(m.items, dest)
		}
	}
}
