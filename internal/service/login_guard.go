package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LoginGuard throttles repeated failed logins per client key. A nil guard, or one without a Redis
// client, allows everything. Redis errors also allow the attempt so an outage never blocks logins.
type LoginGuard struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
	lockout     time.Duration
	logger      zerolog.Logger
}

// NewLoginGuard constructs a guard that locks a key for lockout after maxAttempts failures inside window.
func NewLoginGuard(client *redis.Client, maxAttempts int, window, lockout time.Duration, logger zerolog.Logger) *LoginGuard {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	return &LoginGuard{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
		lockout:     lockout,
		logger:      logger.With().Str("component", "login_guard").Logger(),
	}
}

func (g *LoginGuard) enabled() bool {
	return g != nil && g.client != nil
}

func attemptsKey(key string) string { return fmt.Sprintf("login:attempts:%s", key) }
func lockKey(key string) string     { return fmt.Sprintf("login:lock:%s", key) }

// Locked reports whether key is locked out and for how much longer.
func (g *LoginGuard) Locked(ctx context.Context, key string) (time.Duration, bool) {
	if !g.enabled() {
		return 0, false
	}

	ttl, err := g.client.TTL(ctx, lockKey(key)).Result()
	if err != nil {
		g.logger.Warn().Err(err).Msg("login guard lookup failed, allowing attempt")
		return 0, false
	}
	// TTL reports -2 for a missing key and -1 for a key without expiry.
	if ttl == -2 {
		return 0, false
	}
	if ttl < 0 {
		ttl = g.lockout
	}
	return ttl, true
}

// Fail records a failed attempt for key and starts a lockout once the limit is reached. It
// returns true when the key became locked.
func (g *LoginGuard) Fail(ctx context.Context, key string) bool {
	if !g.enabled() {
		return false
	}

	attempts, err := g.client.Incr(ctx, attemptsKey(key)).Result()
	if err != nil {
		g.logger.Warn().Err(err).Msg("login guard increment failed")
		return false
	}
	if attempts == 1 {
		g.client.Expire(ctx, attemptsKey(key), g.window)
	}
	if attempts < g.maxAttempts {
		return false
	}

	pipe := g.client.TxPipeline()
	pipe.Set(ctx, lockKey(key), attempts, g.lockout)
	pipe.Del(ctx, attemptsKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		g.logger.Warn().Err(err).Msg("login guard lockout failed")
		return false
	}
	g.logger.Info().Str("key", key).Dur("lockout", g.lockout).Msg("login locked after repeated failures")
	return true
}

// Reset clears the failure history of key after a successful login.
func (g *LoginGuard) Reset(ctx context.Context, key string) {
	if !g.enabled() {
		return
	}
	if err := g.client.Del(ctx, attemptsKey(key), lockKey(key)).Err(); err != nil {
		g.logger.Warn().Err(err).Msg("login guard reset failed")
	}
}
