package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/examsim-api/internal/domain/entity"
)

// FeedbackRepo реализует repository.FeedbackRepository
type FeedbackRepo struct {
	db *gorm.DB
}

// NewFeedbackRepo создает новый репозиторий обратной связи
func NewFeedbackRepo(db *gorm.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

// Create добавляет сообщение обратной связи
func (r *FeedbackRepo) Create(feedback *entity.Feedback) error {
	return r.db.Create(feedback).Error
}

// ListByUser возвращает сообщения пользователя, свежие первыми
func (r *FeedbackRepo) ListByUser(userID uint) ([]entity.Feedback, error) {
	var items []entity.Feedback
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}
