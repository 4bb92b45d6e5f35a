package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type SendCodeInput struct {
	Number  string `validate:"required"`
	Country string `validate:"omitempty,iso3166_1_alpha2"`
}

type SendCodeOutput struct {
	Destination string
	Code        string
	CodeExposed bool
	ExpiresAt   time.Time
}

// SendCode normalizes the destination, issues a fresh challenge superseding
// any live one, and dispatches the code over SMS. The challenge is installed
// before the send so a fast verify cannot observe a sent-but-unissued code.
func (s *Usecase) SendCode(ctx context.Context, in SendCodeInput) (*SendCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "SendCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	canonical, err := s.normalizer.Normalize(in.Number, in.Country)
	if err != nil {
		slog.WarnContext(ctx, "destination number rejected", "region", in.Country, "error", err)
		return nil, goerror.NewBusiness("Invalid phone number", goerror.CodeInvalidFormat)
	}
	dest := canonical.E164

	allowed, err := s.limiter.Allow(ctx, dest)
	if err != nil {
		slog.WarnContext(ctx, "rate limit check degraded", "error", err)
	}
	if !allowed {
		slog.WarnContext(ctx, "send rate exceeded for destination")
		return nil, goerror.NewBusiness("Too many requests", goerror.CodeTooManyRequest)
	}

	code, err := s.codegen.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "error", err)
		return nil, goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	ch := entity.Challenge{
		Destination: dest,
		CodeHash:    string(codeHash),
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.codeTTL()),
	}

	if err := s.store.Put(ctx, ch); err != nil {
		slog.ErrorContext(ctx, "failed to store challenge", "error", err)
		return nil, goerror.NewServer(err)
	}

	sid, err := s.gateway.Send(ctx, dest, s.smsBody(code))
	if err != nil {
		slog.ErrorContext(ctx, "sms dispatch failed", "error", err)
		s.auditDelivery(ctx, entity.Delivery{
			ID:          s.uid.Generate(),
			Destination: dest,
			Status:      entity.DeliveryStatusFailed,
			IssuedAt:    ch.IssuedAt,
			ExpiresAt:   ch.ExpiresAt,
		})
		return nil, goerror.NewBusiness("Failed to send message", goerror.CodeInternal)
	}

	s.auditDelivery(ctx, entity.Delivery{
		ID:          s.uid.Generate(),
		Destination: dest,
		MessageSID:  sid,
		Status:      entity.DeliveryStatusSent,
		IssuedAt:    ch.IssuedAt,
		ExpiresAt:   ch.ExpiresAt,
	})

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMsg.PublishOTPIssued(ctx, OTPIssuedEvent{
			Destination: dest,
			MessageSID:  sid,
			ExpiresAt:   ch.ExpiresAt,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish issued event", "error", err)
		}
		return nil
	})

	out := &SendCodeOutput{
		Destination: dest,
		ExpiresAt:   ch.ExpiresAt,
	}
	if s.cfg.GetBool("modules.otp.expose_code") {
		out.Code = code
		out.CodeExposed = true
	}

	return out, nil
}

func (s *Usecase) auditDelivery(ctx context.Context, d entity.Delivery) {
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoDB.CreateDelivery(ctx, d); err != nil {
			slog.ErrorContext(ctx, "failed to record delivery audit", "error", err)
		}
		return nil
	})
}
