package client

import (
	"context"
	"errors"
)

// ErrRetrievalUnavailable is returned by retrievers that cannot read
// incoming messages on this platform.
var ErrRetrievalUnavailable = errors.New("client: code retrieval unavailable")

// CodeRetriever reads the verification code out of an incoming SMS without
// user interaction, where the platform supports it.
//
// Retrieve blocks until a code arrives, the context is cancelled, or the
// retrieval deadline passes. It is called at most once per session.
type CodeRetriever interface {
	// Available reports whether this platform can retrieve codes at all.
	// When false the session skips straight to manual entry.
	Available() bool

	// Retrieve waits for an incoming code.
	Retrieve(ctx context.Context) (string, error)
}

// ChannelRetriever is a CodeRetriever fed through a channel. It backs tests
// and integrations where another component observes incoming messages.
type ChannelRetriever struct {
	C chan string
}

// NewChannelRetriever creates a retriever with a buffered feed channel.
func NewChannelRetriever() *ChannelRetriever {
	return &ChannelRetriever{C: make(chan string, 1)}
}

func (r *ChannelRetriever) Available() bool {
	return true
}

func (r *ChannelRetriever) Retrieve(ctx context.Context) (string, error) {
	select {
	case code := <-r.C:
		return code, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// UnavailableRetriever always reports no retrieval support.
type UnavailableRetriever struct{}

func (UnavailableRetriever) Available() bool {
	return false
}

func (UnavailableRetriever) Retrieve(context.Context) (string, error) {
	return "", ErrRetrievalUnavailable
}
