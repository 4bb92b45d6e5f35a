package limiter

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:rate:"

// allowScript counts actions within a fixed window. The expiry is armed only
// when the window opens, so steady retries cannot extend it.
var allowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RedisFixedWindow counts actions per key with INCR and an expiry on first
// use. The count resets when the window key expires.
type RedisFixedWindow struct {
	client *redis.Client
	cfg    Config
}

// NewRedisFixedWindow creates a redis-backed fixed-window limiter.
func NewRedisFixedWindow(client *redis.Client, cfg Config) *RedisFixedWindow {
	return &RedisFixedWindow{client: client, cfg: cfg}
}

func (l *RedisFixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	n, err := allowScript.Run(ctx, l.client,
		[]string{keyPrefix + key}, l.cfg.Window.Milliseconds()).Int64()
	if err != nil {
		slog.WarnContext(ctx, "limiter: backend unavailable, allowing request", "error", err)
		return true, err
	}

	return n <= l.cfg.Limit, nil
}
