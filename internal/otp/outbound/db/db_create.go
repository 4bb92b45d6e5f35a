package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

// - 40001 serialization_failure → retryable
// - 40P01 deadlock_detected → retryable
func retryablePG(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func (s *DB) withRetry(ctx context.Context, f func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := f(ctx)
		if retryablePG(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *DB) CreateDelivery(ctx context.Context, in entity.Delivery) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDelivery")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO otp_deliveries (id, destination, message_sid, status, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	err = s.mapError(s.withRetry(ctx, func(ctx context.Context) error {
		_, errExec := s.conn.Exec(ctx, query,
			in.ID, in.Destination, in.MessageSID, int16(in.Status), in.IssuedAt, in.ExpiresAt)
		return errExec
	}))
	return err
}

func (s *DB) CreateAttempt(ctx context.Context, in entity.Attempt) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAttempt")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO otp_attempts (id, destination, outcome, source, attempted_at)
		VALUES ($1, $2, $3, $4, $5)`

	err = s.mapError(s.withRetry(ctx, func(ctx context.Context) error {
		_, errExec := s.conn.Exec(ctx, query,
			in.ID, in.Destination, int16(in.Outcome), int16(in.Source), in.AttemptedAt)
		return errExec
	}))
	return err
}
