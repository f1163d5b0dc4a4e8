package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetNXer is the part of redis.Cmdable used by ResetThrottle
type SetNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// ResetThrottle allows one password recovery per e-mail per window.
// The first caller in a window claims the key; the rest are refused until it expires.
type ResetThrottle struct {
	client  SetNXer
	window  time.Duration
	timeout time.Duration
}

func NewResetThrottle(client SetNXer, window time.Duration) *ResetThrottle {
	return &ResetThrottle{
		client:  client,
		window:  window,
		timeout: 2 * time.Second,
	}
}

func (t *ResetThrottle) Allow(email string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	ok, err := t.client.SetNX(ctx, throttleKey(email), 1, t.window).Result()
	if err != nil {
		return false, fmt.Errorf("reset throttle: %w", err)
	}
	return ok, nil
}

func throttleKey(email string) string {
	return "reset-throttle:" + email
}
