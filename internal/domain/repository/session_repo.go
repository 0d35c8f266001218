package repository

import (
	"github.com/yourusername/examsim-api/internal/domain/entity"
)

// SessionRepository определяет методы для работы с серверным состоянием сессий.
// Сессии идентифицируются непрозрачным ключом из куки и живут с TTL.
type SessionRepository interface {
	Save(sessionID string, session *entity.Session) error
	Get(sessionID string) (*entity.Session, error)
	Delete(sessionID string) error
	// Touch продлевает TTL сессии без изменения содержимого
	Touch(sessionID string) error
}
