package entity

// VerificationResult is the outcome of a consume attempt against a challenge.
type VerificationResult int16

const (
	// ResultNotFound mean no challenge was ever issued for the destination.
	ResultNotFound VerificationResult = 0

	// ResultValid mean the candidate matched the live challenge, which is now consumed.
	ResultValid VerificationResult = 1

	// ResultInvalid mean a live challenge exists but the candidate does not match.
	ResultInvalid VerificationResult = 2

	// ResultExpired mean the challenge passed its validity window or was already consumed.
	ResultExpired VerificationResult = 3
)

func (vr VerificationResult) String() string {
	switch vr {
	case ResultValid:
		return "Valid"
	case ResultInvalid:
		return "Invalid"
	case ResultExpired:
		return "Expired"
	default:
		return "NotFound"
	}
}

// AttemptSource identifies which path submitted a verification attempt.
type AttemptSource int16

const (
	SourceManual AttemptSource = 0
	SourceAuto   AttemptSource = 1
)

func (as AttemptSource) String() string {
	switch as {
	case SourceAuto:
		return "auto"
	default:
		return "manual"
	}
}

func AttemptSourceFromString(s string) AttemptSource {
	if s == "auto" {
		return SourceAuto
	}
	return SourceManual
}

// DeliveryStatus is the dispatch state of an outgoing message.
type DeliveryStatus int16

const (
	DeliveryStatusUnknown DeliveryStatus = 0
	DeliveryStatusSent    DeliveryStatus = 1
	DeliveryStatusFailed  DeliveryStatus = 2
)

func (ds DeliveryStatus) String() string {
	switch ds {
	case DeliveryStatusSent:
		return "sent"
	case DeliveryStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
