package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 3 * time.Second

// ErrRedisUnavailable wraps every failure to reach the lockout store at startup.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ConnectRedis opens the client that holds failed-login counters. A blank URL means lockout is
// disabled; the result is then a nil client and a nil error.
func ConnectRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, errors.Join(ErrRedisUnavailable, err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrRedisUnavailable, err)
	}
	return client, nil
}
