package inbound

import "time"

type SendRequest struct {
	Number  string `json:"number"`
	Country string `json:"country,omitempty"`
}

type SendResponse struct {
	Success bool `json:"success"`
	// Code is present only when the service is configured to expose issued
	// codes to the caller (local comparison variants and tests).
	Code string `json:"code,omitempty"`
}

type VerifyRequest struct {
	Number  string `json:"number"`
	Country string `json:"country,omitempty"`
	Code    string `json:"code"`
	Source  string `json:"source,omitempty"`
}

type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	Status string `json:"status"`
}

type DeliveryModel struct {
	ID          int64     `json:"id"`
	Destination string    `json:"destination"`
	MessageSID  string    `json:"message_sid,omitempty"`
	Status      string    `json:"status"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type DeliveriesResponse struct {
	Deliveries []DeliveryModel `json:"deliveries"`
}
