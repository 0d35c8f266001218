package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/examsim-api/internal/domain/entity"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetRandomByCourse возвращает до limit случайных вопросов курса.
// ORDER BY RANDOM() достаточно при размерах банка в тысячи строк на курс.
func (r *QuestionRepo) GetRandomByCourse(courseCode string, limit int) ([]entity.Question, error) {
	var questions []entity.Question
	query := r.db.Where("course_code = ?", courseCode).Order("RANDOM()")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CountByCourse возвращает количество вопросов курса
func (r *QuestionRepo) CountByCourse(courseCode string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).
		Where("course_code = ?", courseCode).
		Count(&count).Error
	return count, err
}

// DistinctCoursesByPrefix возвращает коды курсов по префиксу предмета
func (r *QuestionRepo) DistinctCoursesByPrefix(prefix string) ([]string, error) {
	var codes []string
	err := r.db.Model(&entity.Question{}).
		Distinct("course_code").
		Where("course_code LIKE ?", prefix+"%").
		Order("course_code").
		Pluck("course_code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// CreateBatch создает пакет вопросов
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Устанавливаем кодировку UTF-8 внутри транзакции
		if err := tx.Exec("SET CLIENT_ENCODING TO 'UTF8'").Error; err != nil {
			return err
		}
		return tx.Create(&questions).Error
	})
}
