package entity

import (
	"time"
)

// Метки вариантов ответа. У каждого вопроса ровно четыре варианта A–D.
const (
	OptionLabelA = "A"
	OptionLabelB = "B"
	OptionLabelC = "C"
	OptionLabelD = "D"
)

// SolutionFallback возвращается клиенту, когда у вопроса нет сохранённого решения.
const SolutionFallback = "No detailed solution available."

// Question представляет вопрос банка заданий.
// Записи иммутабельны после посева: приложение их только читает.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CourseCode    string    `gorm:"size:20;not null;index" json:"course_code"`
	Text          string    `gorm:"column:question_text;type:text;not null" json:"question_text"`
	OptionA       string    `gorm:"type:text;not null" json:"option_a"`
	OptionB       string    `gorm:"type:text;not null" json:"option_b"`
	OptionC       string    `gorm:"type:text;not null" json:"option_c"`
	OptionD       string    `gorm:"type:text;not null" json:"option_d"`
	CorrectOption string    `gorm:"size:1;not null" json:"-"` // Скрыто от клиента вне режима study
	Solution      string    `gorm:"type:text" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, совпадает ли выбранная метка с правильным вариантом
func (q *Question) IsCorrect(selected string) bool {
	return selected != "" && selected == q.CorrectOption
}

// Option возвращает текст варианта по метке ("A".."D"), пустую строку для неизвестной метки
func (q *Question) Option(label string) string {
	switch label {
	case OptionLabelA:
		return q.OptionA
	case OptionLabelB:
		return q.OptionB
	case OptionLabelC:
		return q.OptionC
	case OptionLabelD:
		return q.OptionD
	default:
		return ""
	}
}

// HasValidCorrectOption проверяет инвариант банка вопросов:
// правильный вариант указывает на одну из реально присутствующих меток
func (q *Question) HasValidCorrectOption() bool {
	switch q.CorrectOption {
	case OptionLabelA, OptionLabelB, OptionLabelC, OptionLabelD:
		return q.Option(q.CorrectOption) != ""
	default:
		return false
	}
}

// SolutionOrFallback возвращает решение или фиксированный текст-заглушку
func (q *Question) SolutionOrFallback() string {
	if q.Solution == "" {
		return SolutionFallback
	}
	return q.Solution
}
