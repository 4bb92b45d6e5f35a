package event

const OTPIssuedDestination string = "otp_issued"
const OTPIssuedConsumerAudit string = "otp_issued_audit"

type OTPIssuedMessage struct {
	Destination string `json:"destination"`
	MessageSID  string `json:"message_sid"`
	ExpiresAt   int64  `json:"expires_at"`
}
