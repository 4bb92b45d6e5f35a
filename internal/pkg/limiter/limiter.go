package limiter

import (
	"context"
	"time"
)

// Limiter answers whether a keyed action is still within its allowance for
// the current fixed window.
type Limiter interface {
	// Allow consumes one unit for key and reports whether the action may
	// proceed. Implementations fail open on backend errors.
	Allow(ctx context.Context, key string) (bool, error)
}

// Config describes a fixed-window allowance.
type Config struct {
	// Limit is the number of allowed actions per window.
	Limit int64
	// Window is the fixed window length.
	Window time.Duration
}
