package service

import (
	"log"
	"time"

	"github.com/yourusername/examsim-api/internal/domain/repository"
)

// ScoreExportRow представляет одну строку экспорта результатов
type ScoreExportRow struct {
	Username   string
	CourseCode string
	Score      int
	Total      int
	CreatedAt  time.Time
}

// ScoreExporter готовит полный список результатов для выгрузки
type ScoreExporter struct {
	scoreRepo repository.ScoreRepository
}

// NewScoreExporter создает новый экспортер результатов
func NewScoreExporter(scoreRepo repository.ScoreRepository) *ScoreExporter {
	return &ScoreExporter{scoreRepo: scoreRepo}
}

// AllRows возвращает все результаты с именами пользователей без пагинации
func (s *ScoreExporter) AllRows() ([]ScoreExportRow, error) {
	entries, err := s.scoreRepo.GetAllWithUsernames()
	if err != nil {
		log.Printf("[ScoreExporter.AllRows] Failed to load scores: %v", err)
		return nil, err
	}

	rows := make([]ScoreExportRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, ScoreExportRow{
			Username:   entry.Username,
			CourseCode: entry.CourseCode,
			Score:      entry.Score,
			Total:      entry.Total,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return rows, nil
}
