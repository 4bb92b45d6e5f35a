package entity

import "time"

// Challenge correlates an issued verification code with a destination number
// for a bounded validity window. At most one live challenge exists per
// destination; issuing a new one supersedes the prior record.
type Challenge struct {
	Destination string
	CodeHash    string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Consumed    bool
}

// Live reports whether the challenge may still be matched at the given time.
func (c Challenge) Live(now time.Time) bool {
	return !c.Consumed && now.Before(c.ExpiresAt)
}

// Delivery is the audit record written for every dispatched message.
type Delivery struct {
	ID          int64
	Destination string
	MessageSID  string
	Status      DeliveryStatus
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Attempt is the audit record written for every verification attempt.
type Attempt struct {
	ID          int64
	Destination string
	Outcome     VerificationResult
	Source      AttemptSource
	AttemptedAt time.Time
}
