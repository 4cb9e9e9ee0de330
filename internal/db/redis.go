package db

import (
	"backend-trailmeter/internal/config"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a client for the live-feed pub/sub mirror, or nil
// when no address is configured (single-instance mode).
func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
