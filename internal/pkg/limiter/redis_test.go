package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisWindow(t *testing.T, cfg Config) (*RedisFixedWindow, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisFixedWindow(client, cfg), srv
}

func TestRedisFixedWindowAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("DeniesOverLimit", func(t *testing.T) {

		// Arrange
		l, _ := newTestRedisWindow(t, Config{Limit: 2, Window: time.Minute})

		// Act & Assert
		for i := 0; i < 2; i++ {
			ok, err := l.Allow(ctx, "+16502530000")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatalf("expected attempt %d allowed", i+1)
			}
		}

		ok, err := l.Allow(ctx, "+16502530000")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatal("expected attempt over limit denied")
		}
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {

		// Arrange
		l, _ := newTestRedisWindow(t, Config{Limit: 1, Window: time.Minute})
		if _, err := l.Allow(ctx, "+16502530000"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		ok, err := l.Allow(ctx, "+442070313000")

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatal("expected other destination unaffected")
		}
	})

	t.Run("WindowResetsUnderSteadyRetries", func(t *testing.T) {

		// Arrange
		l, srv := newTestRedisWindow(t, Config{Limit: 2, Window: time.Minute})
		for i := 0; i < 3; i++ {
			if _, err := l.Allow(ctx, "+16502530000"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		// Act: retries inside the window must not push the expiry out.
		srv.FastForward(45 * time.Second)
		inWindow, err1 := l.Allow(ctx, "+16502530000")
		srv.FastForward(45 * time.Second)
		afterWindow, err2 := l.Allow(ctx, "+16502530000")

		// Assert
		if err1 != nil || err2 != nil {
			t.Fatalf("unexpected error: %v %v", err1, err2)
		}
		if inWindow {
			t.Fatal("expected retry inside the window denied")
		}
		if !afterWindow {
			t.Fatal("expected a fresh window once the key expired")
		}
	})

	t.Run("FailsOpenWhenBackendDown", func(t *testing.T) {

		// Arrange
		l, srv := newTestRedisWindow(t, Config{Limit: 1, Window: time.Minute})
		srv.Close()

		// Act
		ok, err := l.Allow(ctx, "+16502530000")

		// Assert
		if err == nil {
			t.Fatal("expected backend error to surface")
		}
		if !ok {
			t.Fatal("expected request allowed when the backend is down")
		}
	})
}
