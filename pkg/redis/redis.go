package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/devoriginal/account-backend/config"
	"github.com/devoriginal/account-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

var client *redis.Client

// NewClient builds a client for cfg and fails if the server does not answer PING
func NewClient(cfg *config.RedisConfig) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", c.Options().Addr, err)
	}
	return c, nil
}

// Init connects the shared client used by the reset throttle
func Init(cfg *config.RedisConfig) error {
	logger.Info("Connecting to Redis", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	c, err := NewClient(cfg)
	if err != nil {
		logger.Error("Redis unreachable", err, nil)
		return err
	}
	client = c

	logger.Info("Redis connected", nil)
	return nil
}

func GetClient() *redis.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	logger.Info("Closing Redis connection", nil)
	return client.Close()
}
