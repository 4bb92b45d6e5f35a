package sms

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
)

// Driver enumerates the supported delivery backends.
type Driver string

const (
	DriverTwilio Driver = "twilio"
	DriverLog    Driver = "log"
)

// Gateway dispatches an SMS body to a canonical destination number and
// returns the provider message identifier. Delivery failure is reported to
// the caller; the gateway never retries on its own.
type Gateway interface {
	Send(ctx context.Context, destination, body string) (string, error)
}

// Config carries driver selection and provider credentials.
type Config struct {
	Driver     Driver
	AccountSID string
	AuthToken  string
	From       string
	Instrument instrument.Instrumentation
}

// New builds a Gateway for the configured driver.
func New(cfg Config) (Gateway, error) {
	switch cfg.Driver {
	case DriverTwilio:
		return NewTwilio(cfg), nil
	case DriverLog:
		return NewLog(), nil
	default:
		return nil, fmt.Errorf("sms: unsupported driver %q", cfg.Driver)
	}
}
