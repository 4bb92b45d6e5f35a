package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type VerifyCodeInput struct {
	Number  string `validate:"required"`
	Country string `validate:"omitempty,iso3166_1_alpha2"`
	Code    string `validate:"required,numeric"`
	Source  entity.AttemptSource
}

type VerifyCodeOutput struct {
	Destination string
	Result      entity.VerificationResult
}

// VerifyCode submits a candidate code against the live challenge for the
// destination. The store consume is atomic, so of two racing attempts with
// the correct code exactly one observes Valid.
//
// The candidate is compared as a string: a code of "0092" does not match a
// challenge issued as "92".
func (s *Usecase) VerifyCode(ctx context.Context, in VerifyCodeInput) (*VerifyCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyCode")
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

	codeHash, err := s.hmac.Hash(in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash candidate code", "error", err)
		return nil, goerror.NewServer(err)
	}

	result, err := s.store.Consume(ctx, dest, string(codeHash))
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume challenge", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoDB.CreateAttempt(ctx, entity.Attempt{
			ID:          s.uid.Generate(),
			Destination: dest,
			Outcome:     result,
			Source:      in.Source,
			AttemptedAt: now,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to record attempt audit", "error", err)
		}
		return nil
	})

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMsg.PublishOTPVerified(ctx, OTPVerifiedEvent{
			Destination: dest,
			Outcome:     result,
			Source:      in.Source,
			VerifiedAt:  now,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish verified event", "error", err)
		}
		return nil
	})

	return &VerifyCodeOutput{Destination: dest, Result: result}, nil
}
