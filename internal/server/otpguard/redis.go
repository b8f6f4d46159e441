package otpguard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iudanet/rentspace/internal/crypto"
)

// RedisGuard хранит счетчики и использованные OTP в Redis,
// поэтому ограничения общие для всех экземпляров сервера.
type RedisGuard struct {
	redis       *redis.Client
	window      time.Duration
	maxAttempts int64
}

var _ Guard = (*RedisGuard)(nil)

// NewRedisGuard создает RedisGuard: не более maxAttempts попыток за window
func NewRedisGuard(client *redis.Client, maxAttempts int, window time.Duration) *RedisGuard {
	return &RedisGuard{
		redis:       client,
		window:      window,
		maxAttempts: int64(maxAttempts),
	}
}

func attemptsKey(key string) string {
	return "otp:att:" + key
}

func usedKey(sealed string) string {
	return "otp:used:" + crypto.Fingerprint(sealed)
}

// Allow implements Guard.
// Ключ создается сразу с TTL окна (SET NX EX) и увеличивается в той же транзакции,
// поэтому счетчик без срока жизни не появляется.
func (g *RedisGuard) Allow(ctx context.Context, key string) error {
	var incr *redis.IntCmd
	_, err := g.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, attemptsKey(key), 0, g.window)
		incr = pipe.Incr(ctx, attemptsKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("otp attempts incr: %w", err)
	}
	if incr.Val() > g.maxAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

// Reset implements Guard
func (g *RedisGuard) Reset(ctx context.Context, key string) error {
	if err := g.redis.Del(ctx, attemptsKey(key)).Err(); err != nil {
		return fmt.Errorf("otp attempts reset: %w", err)
	}
	return nil
}

// Consume implements Guard
func (g *RedisGuard) Consume(ctx context.Context, sealed string, ttl time.Duration) error {
	ok, err := g.redis.SetNX(ctx, usedKey(sealed), 1, usedTTL(ttl)).Result()
	if err != nil {
		return fmt.Errorf("otp consume: %w", err)
	}
	if !ok {
		return ErrAlreadyUsed
	}
	return nil
}
