package entity

import (
	"time"
)

// Score представляет сохранённый результат попытки аутентифицированного пользователя.
// Записи только добавляются и никогда не изменяются.
type Score struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	CourseCode string    `gorm:"size:20;not null" json:"course_code"`
	Score      int       `gorm:"not null" json:"score"`
	Total      int       `gorm:"not null" json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Score) TableName() string {
	return "scores"
}

// Ratio возвращает долю правильных ответов (0 при пустой попытке)
func (s *Score) Ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Score) / float64(s.Total)
}
