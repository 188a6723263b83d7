package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zvrva/eventy/config"
)

var ErrTokenNotFound = errors.New("reset token not found or expired")

// ResetTokenStore keeps short-lived password-reset tokens. Tokens expire on
// their own via the key TTL and are consumed on first use.
type ResetTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResetTokenStore(cfg config.RedisConfig, ttl time.Duration) *ResetTokenStore {
	return &ResetTokenStore{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

func (s *ResetTokenStore) Save(ctx context.Context, token, userID string) error {
	return s.client.Set(ctx, resetKey(token), userID, s.ttl).Err()
}

// Consume returns the user id behind a token and deletes it, so a token can
// only be redeemed once.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	return userID, nil
}

func (s *ResetTokenStore) Close() error {
	return s.client.Close()
}

func resetKey(token string) string {
	return fmt.Sprintf("reset:token:%s", token)
}
