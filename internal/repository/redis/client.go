// Package redis holds Redis-backed repositories.
package redis

import (
	"doctrack/internal/config"

	"github.com/redis/go-redis/v9"
)

// New builds a client from configuration. It does not dial; callers Ping to verify.
func New(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
