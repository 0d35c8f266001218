package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/examsim-api/internal/domain/entity"
	"github.com/yourusername/examsim-api/internal/domain/repository"
)

// ScoreRepo реализует repository.ScoreRepository
type ScoreRepo struct {
	db *gorm.DB
}

// NewScoreRepo создает новый репозиторий результатов
func NewScoreRepo(db *gorm.DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// Create добавляет новую запись результата
func (r *ScoreRepo) Create(score *entity.Score) error {
	return r.db.Create(score).Error
}

// GetByUser возвращает результаты пользователя, свежие первыми
func (r *ScoreRepo) GetByUser(userID uint, limit, offset int) ([]entity.Score, error) {
	var scores []entity.Score
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&scores).Error
	return scores, err
}

// GetLeaderboard возвращает верх рейтинга: доля правильных ответов, затем свежесть.
// Попытки с total = 0 отфильтровываются, чтобы не делить на ноль.
func (r *ScoreRepo) GetLeaderboard(limit int) ([]repository.LeaderboardEntry, error) {
	var entries []repository.LeaderboardEntry
	err := r.db.Table("scores s").
		Select("s.*, u.username").
		Joins("JOIN users u ON s.user_id = u.id").
		Where("s.total > 0").
		Order("(CAST(s.score AS FLOAT) / s.total) DESC, s.created_at DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetAllWithUsernames возвращает все результаты для экспорта
func (r *ScoreRepo) GetAllWithUsernames() ([]repository.LeaderboardEntry, error) {
	var entries []repository.LeaderboardEntry
	err := r.db.Table("scores s").
		Select("s.*, u.username").
		Joins("JOIN users u ON s.user_id = u.id").
		Order("s.created_at").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
