package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/examsim-api/internal/domain/entity"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

const sessionKeyPrefix = "session:"

// SessionRepo реализует repository.SessionRepository поверх Redis.
// Каждая сессия - один JSON-документ под непрозрачным ключом с TTL.
type SessionRepo struct {
	client redis.UniversalClient
	ttl    time.Duration
	ctx    context.Context
}

// NewSessionRepo создает новый репозиторий сессий и возвращает ошибку при проблемах
func NewSessionRepo(client redis.UniversalClient, ttl time.Duration) (*SessionRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for SessionRepo")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionRepo{
		client: client,
		ttl:    ttl,
		ctx:    context.Background(),
	}, nil
}

// Save сохраняет состояние сессии с обновлением TTL
func (r *SessionRepo) Save(sessionID string, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, sessionKeyPrefix+sessionID, data, r.ttl).Err()
}

// Get возвращает состояние сессии или apperrors.ErrNotFound
func (r *SessionRepo) Get(sessionID string) (*entity.Session, error) {
	data, err := r.client.Get(r.ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete удаляет сессию (logout)
func (r *SessionRepo) Delete(sessionID string) error {
	return r.client.Del(r.ctx, sessionKeyPrefix+sessionID).Err()
}

// Touch продлевает TTL без изменения содержимого
func (r *SessionRepo) Touch(sessionID string) error {
	return r.client.Expire(r.ctx, sessionKeyPrefix+sessionID, r.ttl).Err()
}
