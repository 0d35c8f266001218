package repository

import (
	"github.com/yourusername/examsim-api/internal/domain/entity"
)

// FeedbackRepository определяет методы для работы с обратной связью
type FeedbackRepository interface {
	Create(feedback *entity.Feedback) error
	ListByUser(userID uint) ([]entity.Feedback, error)
}
