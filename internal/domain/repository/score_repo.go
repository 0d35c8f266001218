package repository

import (
	"time"

	"github.com/yourusername/examsim-api/internal/domain/entity"
)

// LeaderboardEntry представляет строку лидерборда: результат вместе с именем пользователя
type LeaderboardEntry struct {
	Username   string    `json:"username"`
	CourseCode string    `json:"course_code"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScoreRepository определяет методы для работы с сохранёнными результатами.
// Результаты только добавляются; обновления и удаления не предусмотрены.
type ScoreRepository interface {
	Create(score *entity.Score) error
	GetByUser(userID uint, limit, offset int) ([]entity.Score, error)
	// GetLeaderboard возвращает верх рейтинга по доле правильных ответов,
	// при равенстве - по свежести результата
	GetLeaderboard(limit int) ([]LeaderboardEntry, error)
	// GetAllWithUsernames возвращает все результаты для административного экспорта
	GetAllWithUsernames() ([]LeaderboardEntry, error)
}
