package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
)

func newTestRedis(t *testing.T, at time.Time) (*Redis, *miniredis.Miniredis, *clock.StaticClocker) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clk := clock.NewStatic(at)

	return NewRedis(client, clk), srv, clk
}

func TestRedisConsume(t *testing.T) {
	ctx := context.Background()

	t.Run("ConsumeOnce", func(t *testing.T) {

		// Arrange
		now := time.Now()
		r, _, _ := newTestRedis(t, now)
		if err := r.Put(ctx, challengeAt("+16502530000", "h1", now, 2*time.Minute)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		first, err1 := r.Consume(ctx, "+16502530000", "h1")
		second, err2 := r.Consume(ctx, "+16502530000", "h1")

		// Assert
		if err1 != nil || err2 != nil {
			t.Fatalf("unexpected error: %v %v", err1, err2)
		}
		if first != entity.ResultValid {
			t.Fatalf("expected Valid, got %s", first)
		}
		if second != entity.ResultExpired {
			t.Fatalf("expected Expired for consumed challenge, got %s", second)
		}
	})

	t.Run("Mismatch", func(t *testing.T) {

		// Arrange
		now := time.Now()
		r, _, _ := newTestRedis(t, now)
		if err := r.Put(ctx, challengeAt("+16502530000", "h1", now, 2*time.Minute)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		got, err := r.Consume(ctx, "+16502530000", "wrong")

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != entity.ResultInvalid {
			t.Fatalf("expected Invalid, got %s", got)
		}

		// A mismatch must not spend the challenge.
		if after, _ := r.Consume(ctx, "+16502530000", "h1"); after != entity.ResultValid {
			t.Fatalf("expected Valid after mismatch, got %s", after)
		}
	})

	t.Run("NotFound", func(t *testing.T) {

		// Arrange
		r, _, _ := newTestRedis(t, time.Now())

		// Act
		got, err := r.Consume(ctx, "+16502530000", "h1")

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != entity.ResultNotFound {
			t.Fatalf("expected NotFound, got %s", got)
		}
	})

	t.Run("ReissueSupersedes", func(t *testing.T) {

		// Arrange
		now := time.Now()
		r, _, _ := newTestRedis(t, now)
		if err := r.Put(ctx, challengeAt("+16502530000", "h1", now, 2*time.Minute)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := r.Put(ctx, challengeAt("+16502530000", "h2", now, 2*time.Minute)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		old, err1 := r.Consume(ctx, "+16502530000", "h1")
		fresh, err2 := r.Consume(ctx, "+16502530000", "h2")

		// Assert
		if err1 != nil || err2 != nil {
			t.Fatalf("unexpected error: %v %v", err1, err2)
		}
		if old != entity.ResultInvalid {
			t.Fatalf("expected superseded code Invalid, got %s", old)
		}
		if fresh != entity.ResultValid {
			t.Fatalf("expected fresh code Valid, got %s", fresh)
		}
	})

	t.Run("ExpiredAfterWindow", func(t *testing.T) {

		// Arrange
		now := time.Now()
		r, srv, clk := newTestRedis(t, now)
		if err := r.Put(ctx, challengeAt("+16502530000", "h1", now, 2*time.Minute)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		clk.T = now.Add(3 * time.Minute)
		srv.FastForward(3 * time.Minute)

		// Act
		got, err := r.Consume(ctx, "+16502530000", "h1")

		// Assert: past the window the record is retained, so a late attempt
		// observes Expired rather than NotFound even with the correct code.
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != entity.ResultExpired {
			t.Fatalf("expected Expired after window, got %s", got)
		}
	})

	t.Run("EvictedAfterRetention", func(t *testing.T) {

		// Arrange
		now := time.Now()
		r, srv, clk := newTestRedis(t, now)
		if err := r.Put(ctx, challengeAt("+16502530000", "h1", now, 2*time.Minute)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		past := 2*time.Minute + expiredRetention + time.Second
		clk.T = now.Add(past)
		srv.FastForward(past)

		// Act
		got, err := r.Consume(ctx, "+16502530000", "h1")

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != entity.ResultNotFound {
			t.Fatalf("expected NotFound after retention, got %s", got)
		}
	})
}

func TestRedisPut(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectsClosedWindow", func(t *testing.T) {

		// Arrange
		now := time.Now()
		r, _, _ := newTestRedis(t, now)

		// Act
		err := r.Put(ctx, challengeAt("+16502530000", "h1", now.Add(-3*time.Minute), 2*time.Minute))

		// Assert
		if err == nil {
			t.Fatal("expected error for challenge past its window")
		}
	})

	t.Run("RoundTripsThroughLookup", func(t *testing.T) {

		// Arrange
		now := time.Unix(time.Now().Unix(), 0)
		r, _, _ := newTestRedis(t, now)
		ch := challengeAt("+16502530000", "h1", now, 2*time.Minute)
		if err := r.Put(ctx, ch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		got, err := r.Lookup(ctx, ch.Destination)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.CodeHash != "h1" || got.Consumed {
			t.Fatalf("unexpected challenge: %+v", got)
		}
		if !got.ExpiresAt.Equal(ch.ExpiresAt) {
			t.Fatalf("expected expiry %v, got %v", ch.ExpiresAt, got.ExpiresAt)
		}
	})
}
