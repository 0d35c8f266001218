package repository

import (
	"github.com/yourusername/examsim-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	// UpdateProfile обновляет указанные поля профиля, не затрагивая пароль
	UpdateProfile(userID uint, updates map[string]interface{}) error
}
