package repository

import (
	"github.com/yourusername/examsim-api/internal/domain/entity"
)

// PaymentRepository определяет методы для работы с платёжными записями
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	// GetByReference возвращает платёж по уникальной ссылке шлюза
	GetByReference(reference string) (*entity.Payment, error)
	// HasPaid возвращает true, если у пользователя есть подтверждённый платёж
	HasPaid(userID uint) (bool, error)
}
