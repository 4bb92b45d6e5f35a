package store

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
)

// Driver enumerates the supported challenge store backends.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverRedis  Driver = "redis"
)

// Store keeps the per-destination challenge record. It is the only shared
// mutable state in the verification flow, so Put and Consume must be atomic
// with respect to each other for the same destination key.
type Store interface {
	io.Closer

	// Put installs a challenge for its destination, superseding any prior
	// record for the same destination.
	Put(ctx context.Context, ch entity.Challenge) error

	// Lookup returns the stored challenge or goerror.ErrNotFound.
	Lookup(ctx context.Context, destination string) (*entity.Challenge, error)

	// Consume atomically checks the candidate hash against the stored
	// challenge and marks it consumed on a match. At most one call per
	// challenge observes entity.ResultValid.
	Consume(ctx context.Context, destination, codeHash string) (entity.VerificationResult, error)
}

// Config carries driver selection and its dependencies.
type Config struct {
	Driver Driver
	Clock  clock.Clocker
	// Client is required for DriverRedis.
	Client *redis.Client
}

// New builds a Store for the configured driver.
func New(cfg Config) (Store, error) {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(clk), nil
	case DriverRedis:
		if cfg.Client == nil {
			return nil, fmt.Errorf("store: redis driver requires a client")
		}
		return NewRedis(cfg.Client, clk), nil
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}
