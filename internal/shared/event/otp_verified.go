package event

const OTPVerifiedDestination string = "otp_verified"
const OTPVerifiedConsumerAudit string = "otp_verified_audit"

type OTPVerifiedMessage struct {
	Destination string `json:"destination"`
	Outcome     string `json:"outcome"`
	Source      string `json:"source"`
	VerifiedAt  int64  `json:"verified_at"`
}
