package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

const (
	defaultDeliveryListLimit int32 = 50
	maxDeliveryListLimit     int32 = 200
)

type ListDeliveriesInput struct {
	Number  string `validate:"omitempty"`
	Country string `validate:"omitempty,iso3166_1_alpha2"`
	Limit   int32  `validate:"omitempty,min=0"`
}

type ListDeliveriesOutput struct {
	Deliveries []entity.Delivery
}

// ListDeliveries reads the dispatch audit trail, optionally filtered to one
// destination.
func (s *Usecase) ListDeliveries(ctx context.Context, in ListDeliveriesInput) (*ListDeliveriesOutput, error) {
	ctx, span := s.startSpan(ctx, "ListDeliveries")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	dest := ""
	if in.Number != "" {
		canonical, err := s.normalizer.Normalize(in.Number, in.Country)
		if err != nil {
			return nil, goerror.NewBusiness("Invalid phone number", goerror.CodeInvalidFormat)
		}
		dest = canonical.E164
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultDeliveryListLimit
	}
	if limit > maxDeliveryListLimit {
		limit = maxDeliveryListLimit
	}

	deliveries, err := s.repoDB.ListDeliveries(ctx, dest, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list deliveries", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ListDeliveriesOutput{Deliveries: deliveries}, nil
}
