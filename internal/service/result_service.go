package service

import (
	"errors"
	"log"

	"github.com/yourusername/examsim-api/internal/domain/entity"
	"github.com/yourusername/examsim-api/internal/domain/repository"
	"github.com/yourusername/examsim-api/internal/handler/dto"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

// ResultService отвечает за подсчет результата и разбор ответов
type ResultService struct {
	questionRepo repository.QuestionRepository
	scoreRepo    repository.ScoreRepository
}

// NewResultService создает новый сервис результатов
func NewResultService(questionRepo repository.QuestionRepository, scoreRepo repository.ScoreRepository) *ResultService {
	return &ResultService{
		questionRepo: questionRepo,
		scoreRepo:    scoreRepo,
	}
}

// ScoreSubmission подсчитывает результат по отправленным ответам.
// Total равен числу вопросов попытки; пропущенные (nil) ответы и ответы
// на неизвестные вопросы засчитываются как неверные. Ошибка чтения
// отдельного вопроса не роняет подсчет: такой ответ считается неверным.
func (s *ResultService) ScoreSubmission(answers []entity.SubmittedAnswer) (score int, total int) {
	total = len(answers)
	for _, answer := range answers {
		chosen, ok := answer.Chosen()
		if !ok {
			continue
		}

		question, err := s.questionRepo.GetByID(answer.QuestionID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				log.Printf("[ResultService.ScoreSubmission] Failed to load question %d: %v", answer.QuestionID, err)
			}
			continue
		}
		if question.IsCorrect(chosen) {
			score++
		}
	}
	return score, total
}

// BuildReview строит построчный разбор попытки. Вопросы, которых больше нет
// в базе, пропускаются без ошибки.
func (s *ResultService) BuildReview(answers []entity.SubmittedAnswer) []dto.ReviewItem {
	items := make([]dto.ReviewItem, 0, len(answers))
	for _, answer := range answers {
		question, err := s.questionRepo.GetByID(answer.QuestionID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				log.Printf("[ResultService.BuildReview] Failed to load question %d: %v", answer.QuestionID, err)
			}
			continue
		}
		items = append(items, dto.NewReviewItem(question, answer.Answer))
	}
	return items
}

// PersistScore сохраняет результат авторизованного пользователя.
// Для анонимных попыток ничего не сохраняется.
func (s *ResultService) PersistScore(session *entity.Session, courseCode string, score, total int) error {
	if session == nil || !session.IsAuthenticated() {
		return nil
	}

	record := &entity.Score{
		UserID:     session.UserID,
		CourseCode: courseCode,
		Score:      score,
		Total:      total,
	}
	if err := s.scoreRepo.Create(record); err != nil {
		log.Printf("[ResultService.PersistScore] Failed to save score for user %d: %v", session.UserID, err)
		return err
	}
	return nil
}

// ScoreHistory возвращает сохраненные результаты пользователя
func (s *ResultService) ScoreHistory(userID uint, limit, offset int) ([]dto.ScoreHistoryEntry, error) {
	scores, err := s.scoreRepo.GetByUser(userID, limit, offset)
	if err != nil {
		log.Printf("[ResultService.ScoreHistory] Failed to load scores for user %d: %v", userID, err)
		return nil, err
	}

	entries := make([]dto.ScoreHistoryEntry, 0, len(scores))
	for _, sc := range scores {
		entries = append(entries, dto.ScoreHistoryEntry{
			CourseCode: sc.CourseCode,
			Score:      sc.Score,
			Total:      sc.Total,
			CreatedAt:  sc.CreatedAt,
		})
	}
	return entries, nil
}
