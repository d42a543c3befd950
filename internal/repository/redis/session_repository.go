package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/repository"
)

const (
	hashFieldUserID    = "user_id"
	hashFieldCreatedAt = "created_at"
)

// SessionRepository реализует repository.SessionRepository используя Redis hash
// Токен сессии выдаётся покупателю как bearer token и живёт до истечения TTL
type SessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionRepository создаёт новый Redis session repository
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		client: client,
		logger: logger,
	}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// CreateSession создаёт новую сессию для пользователя в Redis (hash)
func (r *SessionRepository) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	key := sessionKey(token)
	now := time.Now().UTC().Format(time.RFC3339)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, hashFieldUserID, userID, hashFieldCreatedAt, now)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	if err != nil {
		r.logger.Error("failed to create session hash in redis",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.Info("session created",
		zap.String("user_id", userID),
		zap.Duration("ttl", ttl),
	)

	return token, nil
}

// GetUserIDBySession получает user_id по токену сессии из Redis hash
func (r *SessionRepository) GetUserIDBySession(ctx context.Context, token string) (string, error) {
	key := sessionKey(token)

	userID, err := r.client.HGet(ctx, key, hashFieldUserID).Result()
	if err != nil {
		if err == redis.Nil {
			return "", repository.ErrSessionNotFound
		}
		r.logger.Error("failed to get session hash from redis", zap.Error(err))
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	if userID == "" {
		return "", repository.ErrSessionNotFound
	}

	return userID, nil
}

// DeleteSession удаляет сессию (hash) из Redis
func (r *SessionRepository) DeleteSession(ctx context.Context, token string) error {
	key := sessionKey(token)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("failed to delete session hash from redis", zap.Error(err))
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
