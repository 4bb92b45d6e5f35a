package sms

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Log is a Gateway for local development that writes the message to the
// application log instead of dispatching it.
type Log struct{}

// NewLog creates a logging gateway.
func NewLog() *Log {
	return &Log{}
}

func (l *Log) Send(ctx context.Context, destination, body string) (string, error) {
	sid := "LOG" + uuid.NewString()
	slog.InfoContext(ctx, "sms: delivery suppressed, log driver active",
		"destination", destination, "body", body, "sid", sid)
	return sid, nil
}
