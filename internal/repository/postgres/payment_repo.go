package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/examsim-api/internal/domain/entity"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

// PaymentRepo реализует repository.PaymentRepository
type PaymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo создает новый репозиторий платежей
func NewPaymentRepo(db *gorm.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// Create добавляет платёжную запись.
// Уникальный индекс по reference не допускает повторного зачисления
// одной и той же транзакции.
func (r *PaymentRepo) Create(payment *entity.Payment) error {
	err := r.db.Create(payment).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrConflict
	}
	return err
}

// GetByReference возвращает платёж по ссылке шлюза
func (r *PaymentRepo) GetByReference(reference string) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.db.Where("reference = ?", reference).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// HasPaid возвращает true, если у пользователя есть подтверждённый платёж
func (r *PaymentRepo) HasPaid(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Payment{}).
		Where("user_id = ? AND status = ?", userID, entity.PaymentStatusPaid).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
