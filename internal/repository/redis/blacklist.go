package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"doctrack/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Blacklist stores revoked session tokens until their natural expiry.
type Blacklist struct {
	client *redis.Client
	now    func() time.Time
}

// NewBlacklist creates a Blacklist on top of client.
func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client, now: time.Now}
}

var _ repository.TokenBlacklist = (*Blacklist)(nil)

func (b *Blacklist) key(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}

// Add revokes token. Tokens that have already expired are not stored.
func (b *Blacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.key(token), "1", ttl).Err()
}

func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := b.client.Get(ctx, b.key(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
