package db

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

type deliveryRow struct {
	ID          int64
	Destination string
	MessageSID  string
	Status      int16
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

func (s *DB) ListDeliveries(ctx context.Context, destination string, limit int32) (out []entity.Delivery, err error) {
	ctx, span := s.startSpan(ctx, "ListDeliveries")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT id, destination, message_sid, status, issued_at, expires_at
		FROM otp_deliveries
		WHERE ($1 = '' OR destination = $1)
		ORDER BY issued_at DESC
		LIMIT $2`

	rows, err := s.conn.Query(ctx, query, destination, limit)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	defer rows.Close()

	var raws []deliveryRow
	for rows.Next() {
		var r deliveryRow
		if err = rows.Scan(&r.ID, &r.Destination, &r.MessageSID, &r.Status, &r.IssuedAt, &r.ExpiresAt); err != nil {
			return nil, err
		}
		raws = append(raws, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return lo.Map(raws, func(r deliveryRow, _ int) entity.Delivery {
		return entity.Delivery{
			ID:          r.ID,
			Destination: r.Destination,
			MessageSID:  r.MessageSID,
			Status:      entity.DeliveryStatus(r.Status),
			IssuedAt:    r.IssuedAt,
			ExpiresAt:   r.ExpiresAt,
		}
	}), nil
}
