package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

const challengeKeyPrefix = "otp:challenge:"

// expiredRetention keeps a record in redis past its validity window so a
// late attempt observes Expired rather than NotFound. The consume script
// compares against expires_at, not the key TTL. The memory driver gets the
// same grace from its janitor interval.
const expiredRetention = 5 * time.Minute

// consumeScript checks and marks a challenge in one round trip so that
// concurrent attempts for the same destination serialize inside redis.
// Returns 0 missing, 1 valid, 2 mismatch, 3 expired-or-consumed.
var consumeScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return 0
end

local ch = cjson.decode(raw)
local now = tonumber(ARGV[2])

if ch.consumed or now >= ch.expires_at then
  return 3
end

if ch.code_hash ~= ARGV[1] then
  return 2
end

ch.consumed = true
local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then
  redis.call('SET', KEYS[1], cjson.encode(ch), 'PX', ttl)
end

return 1
`)

type challengeRecord struct {
	CodeHash  string `json:"code_hash"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
	Consumed  bool   `json:"consumed"`
}

// Redis is a Store backed by a shared redis instance, for deployments where
// issuance and verification may land on different processes.
type Redis struct {
	client *redis.Client
	clk    clock.Clocker
}

// NewRedis creates a redis-backed Store.
func NewRedis(client *redis.Client, clk clock.Clocker) *Redis {
	return &Redis{client: client, clk: clk}
}

func (r *Redis) Put(ctx context.Context, ch entity.Challenge) error {
	raw, err := json.Marshal(challengeRecord{
		CodeHash:  ch.CodeHash,
		IssuedAt:  ch.IssuedAt.Unix(),
		ExpiresAt: ch.ExpiresAt.Unix(),
		Consumed:  ch.Consumed,
	})
	if err != nil {
		return fmt.Errorf("store: marshal challenge: %w", err)
	}

	ttl := ch.ExpiresAt.Sub(r.clk.Now())
	if ttl <= 0 {
		return fmt.Errorf("store: challenge already past its window")
	}

	return r.client.Set(ctx, challengeKeyPrefix+ch.Destination, raw, ttl+expiredRetention).Err()
}

func (r *Redis) Lookup(ctx context.Context, destination string) (*entity.Challenge, error) {
	raw, err := r.client.Get(ctx, challengeKeyPrefix+destination).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec challengeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("store: unmarshal challenge: %w", err)
	}

	return &entity.Challenge{
		Destination: destination,
		CodeHash:    rec.CodeHash,
		IssuedAt:    time.Unix(rec.IssuedAt, 0),
		ExpiresAt:   time.Unix(rec.ExpiresAt, 0),
		Consumed:    rec.Consumed,
	}, nil
}

func (r *Redis) Consume(ctx context.Context, destination, codeHash string) (entity.VerificationResult, error) {
	now := r.clk.Now().Unix()

	n, err := consumeScript.Run(ctx, r.client,
		[]string{challengeKeyPrefix + destination}, codeHash, now).Int()
	if err != nil {
		return entity.ResultNotFound, err
	}

	switch n {
	case 1:
		return entity.ResultValid, nil
	case 2:
		return entity.ResultInvalid, nil
	case 3:
		return entity.ResultExpired, nil
	default:
		return entity.ResultNotFound, nil
	}
}

// Close is a no-op; the redis client lifecycle belongs to the caller.
func (r *Redis) Close() error {
	return nil
}
