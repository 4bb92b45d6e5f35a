package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultRetrievalTimeout bounds how long a session waits for automatic code
// retrieval before degrading to manual entry. The server-side challenge TTL
// must exceed this so manual fallback still has a usable window.
const DefaultRetrievalTimeout = 15 * time.Second

// State is the auto-retrieval lifecycle of a verification session.
type State int32

const (
	// StateIdle mean the session has not started listening yet.
	StateIdle State = 0

	// StateListening mean the session waits for an incoming code, racing
	// any concurrent manual entry.
	StateListening State = 1

	// StateResolved mean a submitted code verified as valid.
	StateResolved State = 2

	// StateTimedOut mean retrieval hit its deadline; manual entry remains open.
	StateTimedOut State = 3

	// StateCancelled mean the caller abandoned the session.
	StateCancelled State = 4

	// StateFailed mean retrieval or its verification errored; manual entry
	// remains open.
	StateFailed State = 5

	// StateManualOnly mean no retriever is available, so the session went
	// straight to manual entry without ever listening.
	StateManualOnly State = 6
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "Listening"
	case StateResolved:
		return "Resolved"
	case StateTimedOut:
		return "TimedOut"
	case StateCancelled:
		return "Cancelled"
	case StateFailed:
		return "Failed"
	case StateManualOnly:
		return "ManualOnly"
	default:
		return "Idle"
	}
}

// VerifyFunc submits a candidate code from the given source and returns the
// service outcome. Both the auto and manual paths go through the same func,
// so the server's atomic consume decides the race winner.
type VerifyFunc func(ctx context.Context, code, source string) (*VerifyResult, error)

// AutoResult is delivered once when the automatic retrieval path finishes.
type AutoResult struct {
	// Verification is set when a retrieved code was submitted.
	Verification *VerifyResult
	// Code is the retrieved code, when retrieval succeeded.
	Code string
	// TimedOut reports whether retrieval hit its deadline.
	TimedOut bool
	// Err is set when retrieval or its verification failed.
	Err error
}

// SessionConfig configures a verification session.
type SessionConfig struct {
	// Verify submits candidate codes. Required.
	Verify VerifyFunc
	// Retriever reads incoming codes. Optional; nil means manual entry only.
	Retriever CodeRetriever
	// Timeout bounds automatic retrieval. Zero means DefaultRetrievalTimeout.
	Timeout time.Duration
}

// Session runs one verification flow for one destination: an optional
// automatic retrieval racing manual entry, first valid code wins.
type Session struct {
	verify    VerifyFunc
	retriever CodeRetriever
	timeout   time.Duration

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewSession creates an idle session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Verify == nil {
		return nil, errors.New("client: session requires a verify func")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRetrievalTimeout
	}

	return &Session{
		verify:    cfg.Verify,
		retriever: cfg.Retriever,
		timeout:   timeout,
		state:     StateIdle,
	}, nil
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Listen starts the automatic retrieval race. The returned channel receives
// at most one AutoResult and is closed when the auto path is done; it closes
// immediately without a result when no retriever is available.
//
// Manual entry via SubmitManual stays open the whole time and competes
// fairly: whichever path reaches the verify endpoint first with the correct
// code wins, the loser observes an expired or already-consumed outcome.
func (s *Session) Listen(ctx context.Context) (<-chan AutoResult, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		st := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("client: session already started (state %s)", st)
	}
	if s.retriever == nil || !s.retriever.Available() {
		s.state = StateManualOnly
		s.mu.Unlock()

		ch := make(chan AutoResult)
		close(ch)
		return ch, nil
	}

	s.state = StateListening

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	s.cancel = cancel
	s.mu.Unlock()

	ch := make(chan AutoResult, 1)

	go func() {
		defer close(ch)
		defer cancel()

		code, err := s.retriever.Retrieve(rctx)
		if err != nil {
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				s.transitionFromListening(StateTimedOut)
				ch <- AutoResult{TimedOut: true, Err: err}
			case errors.Is(err, context.Canceled):
				s.transitionFromListening(StateCancelled)
				ch <- AutoResult{Err: err}
			default:
				s.transitionFromListening(StateFailed)
				ch <- AutoResult{Err: err}
			}
			return
		}

		// The retrieved code goes through the same consume path as manual
		// entry; no local shortcut.
		v, err := s.verify(ctx, code, "auto")
		if err != nil {
			s.transitionFromListening(StateFailed)
			ch <- AutoResult{Code: code, Err: err}
			return
		}

		if v.Valid {
			s.resolve()
		}
		ch <- AutoResult{Verification: v, Code: code}
	}()

	return ch, nil
}

// SubmitManual submits a user-typed code. It may be called while the auto
// path is still listening; a valid outcome resolves the session and cancels
// retrieval.
func (s *Session) SubmitManual(ctx context.Context, code string) (*VerifyResult, error) {
	s.mu.Lock()
	if s.state == StateCancelled {
		s.mu.Unlock()
		return nil, errors.New("client: session is cancelled")
	}
	if s.state == StateResolved {
		s.mu.Unlock()
		return nil, errors.New("client: session is already resolved")
	}
	s.mu.Unlock()

	v, err := s.verify(ctx, code, "manual")
	if err != nil {
		return nil, err
	}

	if v.Valid {
		s.resolve()
	}

	return v, nil
}

// Cancel abandons the session and stops any in-flight retrieval.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state == StateIdle || s.state == StateListening || s.state == StateManualOnly {
		s.state = StateCancelled
	}
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *Session) resolve() {
	s.mu.Lock()
	s.state = StateResolved
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *Session) transitionFromListening(to State) {
	s.mu.Lock()
	if s.state == StateListening {
		s.state = to
	}
	s.mu.Unlock()
}
