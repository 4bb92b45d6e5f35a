package clock

import "time"

// StaticClocker is a Clocker that always returns the same instant.
//
// It is intended for tests that need deterministic expiry arithmetic.
type StaticClocker struct {
	T time.Time
}

// NewStatic returns a StaticClocker pinned to t.
func NewStatic(t time.Time) *StaticClocker {
	return &StaticClocker{T: t}
}

// Now returns the pinned instant.
func (s *StaticClocker) Now() time.Time {
	return s.T
}
