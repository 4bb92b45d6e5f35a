package sms

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.opentelemetry.io/otel/codes"
)

// Twilio sends messages through the Twilio Programmable Messaging API.
type Twilio struct {
	client *twilio.RestClient
	from   string
	ins    instrument.Instrumentation
}

// NewTwilio creates a Twilio gateway from account credentials.
func NewTwilio(cfg Config) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &Twilio{client: client, from: cfg.From, ins: cfg.Instrument}
}

func (t *Twilio) Send(ctx context.Context, destination, body string) (string, error) {
	_, span := t.ins.Tracer("otp.outbound.sms").Start(ctx, "Send")
	defer span.End()

	params := &openapi.CreateMessageParams{}
	params.SetTo(destination)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("sms: twilio create message: %w", err)
	}

	if resp.Sid == nil {
		return "", nil
	}

	return *resp.Sid, nil
}
