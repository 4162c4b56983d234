package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "auth_"

// RedisSessionRepository implements domain.SessionRepository using Redis.
// Expiry is handled entirely by the key TTL; a missing key and an expired
// key are indistinguishable on purpose.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new Redis session repository
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{
		client: client,
	}
}

func (r *RedisSessionRepository) Set(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKeyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) Get(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return userID, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
