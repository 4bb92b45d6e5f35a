package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// verifyStub mimics the server's atomic consume: the configured code is
// accepted exactly once, later correct attempts observe Expired.
type verifyStub struct {
	mu       sync.Mutex
	code     string
	consumed bool
	calls    []string
}

func (v *verifyStub) fn(_ context.Context, code, source string) (*VerifyResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.calls = append(v.calls, source)

	if code != v.code {
		return &VerifyResult{Valid: false, Status: "Invalid"}, nil
	}
	if v.consumed {
		return &VerifyResult{Valid: false, Status: "Expired"}, nil
	}

	v.consumed = true
	return &VerifyResult{Valid: true, Status: "Valid"}, nil
}

func TestSessionAutoRetrieval(t *testing.T) {

	t.Run("AutoWinsAndResolves", func(t *testing.T) {

		// Arrange
		stub := &verifyStub{code: "4821"}
		retriever := NewChannelRetriever()
		s, err := NewSession(SessionConfig{Verify: stub.fn, Retriever: retriever})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		ch, err := s.Listen(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		retriever.C <- "4821"
		res := <-ch

		// Assert
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if res.Verification == nil || !res.Verification.Valid {
			t.Fatalf("expected valid auto verification, got %+v", res)
		}
		if got := s.State(); got != StateResolved {
			t.Fatalf("expected Resolved, got %s", got)
		}

		// A manual submission after resolution is refused locally.
		if _, err := s.SubmitManual(context.Background(), "4821"); err == nil {
			t.Fatal("expected error for manual submit after resolution")
		}
	})

	t.Run("ManualWinsWhileListening", func(t *testing.T) {

		// Arrange
		stub := &verifyStub{code: "4821"}
		retriever := NewChannelRetriever()
		s, err := NewSession(SessionConfig{Verify: stub.fn, Retriever: retriever})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ch, err := s.Listen(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		v, err := s.SubmitManual(context.Background(), "4821")

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !v.Valid {
			t.Fatalf("expected manual win, got %+v", v)
		}
		if got := s.State(); got != StateResolved {
			t.Fatalf("expected Resolved, got %s", got)
		}

		// The auto path was cancelled by the manual win.
		res := <-ch
		if res.Err == nil || !errors.Is(res.Err, context.Canceled) {
			t.Fatalf("expected cancelled retrieval, got %+v", res)
		}
	})

	t.Run("LateAutoObservesConsumed", func(t *testing.T) {

		// Arrange
		stub := &verifyStub{code: "4821"}
		retriever := NewChannelRetriever()
		s, err := NewSession(SessionConfig{Verify: stub.fn, Retriever: retriever})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ch, err := s.Listen(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := s.SubmitManual(context.Background(), "4821"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act: the retrieved code raced in just before cancellation landed.
		retriever.C <- "4821"
		res := <-ch

		// Assert: either the retrieval was cancelled, or its verification
		// observed the consumed challenge. Never a second Valid.
		if res.Verification != nil && res.Verification.Valid {
			t.Fatalf("expected at most one valid outcome, got %+v", res)
		}
		if got := s.State(); got != StateResolved {
			t.Fatalf("expected Resolved, got %s", got)
		}
	})

	t.Run("TimeoutDegradesToManual", func(t *testing.T) {

		// Arrange
		stub := &verifyStub{code: "4821"}
		retriever := NewChannelRetriever()
		s, err := NewSession(SessionConfig{
			Verify:    stub.fn,
			Retriever: retriever,
			Timeout:   20 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		ch, err := s.Listen(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res := <-ch

		// Assert
		if !res.TimedOut {
			t.Fatalf("expected timeout, got %+v", res)
		}
		if got := s.State(); got != StateTimedOut {
			t.Fatalf("expected TimedOut, got %s", got)
		}

		// Manual entry still works within the server-side TTL.
		v, err := s.SubmitManual(context.Background(), "4821")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !v.Valid {
			t.Fatalf("expected manual fallback win, got %+v", v)
		}
		if got := s.State(); got != StateResolved {
			t.Fatalf("expected Resolved, got %s", got)
		}
	})

	t.Run("UnavailableRetrieverSkipsToManual", func(t *testing.T) {

		// Arrange
		stub := &verifyStub{code: "4821"}
		s, err := NewSession(SessionConfig{Verify: stub.fn, Retriever: UnavailableRetriever{}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		ch, err := s.Listen(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Assert: the auto channel closes without a result and the session
		// reports manual-only rather than a listener that never existed.
		if _, ok := <-ch; ok {
			t.Fatal("expected closed auto channel")
		}
		if got := s.State(); got != StateManualOnly {
			t.Fatalf("expected ManualOnly, got %s", got)
		}

		v, err := s.SubmitManual(context.Background(), "4821")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !v.Valid {
			t.Fatalf("expected manual win, got %+v", v)
		}
	})

	t.Run("CancelStopsListening", func(t *testing.T) {

		// Arrange
		stub := &verifyStub{code: "4821"}
		retriever := NewChannelRetriever()
		s, err := NewSession(SessionConfig{Verify: stub.fn, Retriever: retriever})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ch, err := s.Listen(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		s.Cancel()
		res := <-ch

		// Assert
		if !errors.Is(res.Err, context.Canceled) {
			t.Fatalf("expected cancellation, got %+v", res)
		}
		if got := s.State(); got != StateCancelled {
			t.Fatalf("expected Cancelled, got %s", got)
		}
		if _, err := s.SubmitManual(context.Background(), "4821"); err == nil {
			t.Fatal("expected error for manual submit after cancel")
		}
	})

	t.Run("ListenTwiceFails", func(t *testing.T) {

		// Arrange
		stub := &verifyStub{code: "4821"}
		s, err := NewSession(SessionConfig{Verify: stub.fn})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := s.Listen(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		_, err = s.Listen(context.Background())

		// Assert
		if err == nil {
			t.Fatal("expected error for second Listen")
		}
	})

	t.Run("RequiresVerifyFunc", func(t *testing.T) {

		// Act
		_, err := NewSession(SessionConfig{})

		// Assert
		if err == nil {
			t.Fatal("expected error for missing verify func")
		}
	})
}
