package repository

import (
	"github.com/yourusername/examsim-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с банком вопросов
type QuestionRepository interface {
	GetByID(id uint) (*entity.Question, error)
	// GetRandomByCourse возвращает до limit случайных вопросов курса без повторов
	GetRandomByCourse(courseCode string, limit int) ([]entity.Question, error)
	CountByCourse(courseCode string) (int64, error)
	// DistinctCoursesByPrefix возвращает коды курсов, начинающиеся с префикса предмета
	DistinctCoursesByPrefix(prefix string) ([]string, error)
	// CreateBatch используется только инструментом посева банка вопросов
	CreateBatch(questions []entity.Question) error
}
