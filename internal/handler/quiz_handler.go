package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/examsim-api/internal/domain/entity"
	"github.com/yourusername/examsim-api/internal/handler/dto"
	"github.com/yourusername/examsim-api/internal/middleware"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
	"github.com/yourusername/examsim-api/internal/service"
)

// Длительность попытки по умолчанию, если клиент её не задал
const defaultAttemptDurationSeconds = 600

// QuizHandler обрабатывает выбор тарифа, настройку и прохождение теста
type QuizHandler struct {
	quizService   *service.QuizService
	resultService *service.ResultService
	accessService *service.AccessService
	sessions      *middleware.SessionMiddleware
}

// NewQuizHandler создает новый обработчик тестов
func NewQuizHandler(
	quizService *service.QuizService,
	resultService *service.ResultService,
	accessService *service.AccessService,
	sessions *middleware.SessionMiddleware,
) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		resultService: resultService,
		accessService: accessService,
		sessions:      sessions,
	}
}

// SelectTier фиксирует выбранный тариф в сессии и возвращает каталог предметов.
// Платный тариф доступен только авторизованным пользователям с оплатой.
func (h *QuizHandler) SelectTier(mode entity.SimulatorMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := middleware.SessionFromContext(c)

		if mode.RequiresPayment() {
			status := h.accessService.StatusFor(session)
			if !status.Authenticated {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required for the paid simulator"})
				return
			}
			if !status.HasPaid {
				c.JSON(http.StatusForbidden, gin.H{"error": "Payment required for the paid simulator"})
				return
			}
		}

		session.Mode = mode
		// Смена тарифа сбрасывает незавершенную попытку
		session.Attempt = nil
		if err := h.sessions.Persist(c, session); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}

		c.JSON(http.StatusOK, h.quizService.Catalog(mode))
	}
}

// ConfigureTestRequest представляет запрос на настройку попытки
type ConfigureTestRequest struct {
	Course          string `json:"course" binding:"required"`
	NumQuestions    int    `json:"num_questions" binding:"omitempty,min=1,max=100"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=1,max=180"`
}

// ConfigureTest проверяет доступ к курсу и сохраняет конфигурацию попытки в сессии
func (h *QuizHandler) ConfigureTest(c *gin.Context) {
	var req ConfigureTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFromContext(c)
	mode := session.CurrentMode()

	status := h.accessService.StatusFor(session)
	if err := h.accessService.Resolve(req.Course, mode, status); err != nil {
		h.handleQuizError(c, err)
		return
	}

	info, err := h.quizService.CourseInfo(req.Course)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	numQuestions := req.NumQuestions
	if numQuestions <= 0 {
		numQuestions = entity.DefaultQuestionCount
	}
	if mode == entity.ModeFree && numQuestions > entity.FreeModeMaxQuestions {
		numQuestions = entity.FreeModeMaxQuestions
	}
	durationSeconds := req.DurationMinutes * 60
	if durationSeconds <= 0 {
		durationSeconds = defaultAttemptDurationSeconds
	}

	session.Attempt = &entity.Attempt{
		CourseCode:      info.Course,
		NumQuestions:    numQuestions,
		DurationSeconds: durationSeconds,
		Mode:            mode,
	}
	if err := h.sessions.Persist(c, session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	info.Simulator = string(mode)
	c.JSON(http.StatusOK, info)
}

// QuizResponse представляет набор вопросов с параметрами попытки
type QuizResponse struct {
	Course          string             `json:"course"`
	Simulator       string             `json:"simulator"`
	DurationSeconds int                `json:"duration_seconds"`
	Questions       []dto.QuestionView `json:"questions"`
}

// StartQuiz выдает случайный набор вопросов по сохраненной конфигурации попытки.
// Параметры запроса (course, num_questions, hours, minutes, simulator) позволяют
// настроить попытку прямо в этом запросе, минуя отдельный шаг конфигурации.
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	session := middleware.SessionFromContext(c)

	if course := c.Query("course"); course != "" {
		attempt, err := h.attemptFromQuery(c, session, course)
		if err != nil {
			h.handleQuizError(c, err)
			return
		}
		session.Mode = attempt.Mode
		session.Attempt = attempt
		if err := h.sessions.Persist(c, session); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}
	}

	attempt := session.Attempt
	if attempt == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No test configured. Configure a test first."})
		return
	}

	status := h.accessService.StatusFor(session)
	if err := h.accessService.Resolve(attempt.CourseCode, attempt.Mode, status); err != nil {
		h.handleQuizError(c, err)
		return
	}

	questions, err := h.quizService.SelectQuestions(attempt.CourseCode, attempt.Mode, attempt.NumQuestions)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, QuizResponse{
		Course:          attempt.CourseCode,
		Simulator:       string(attempt.Mode),
		DurationSeconds: attempt.DurationSeconds,
		Questions:       questions,
	})
}

// attemptFromQuery собирает конфигурацию попытки из параметров запроса
func (h *QuizHandler) attemptFromQuery(c *gin.Context, session *entity.Session, course string) (*entity.Attempt, error) {
	mode := session.CurrentMode()
	if raw := c.Query("simulator"); raw != "" {
		mode = entity.ParseSimulatorMode(raw)
	}

	numQuestions := entity.DefaultQuestionCount
	if raw := c.Query("num_questions"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%w: invalid num_questions", apperrors.ErrValidation)
		}
		numQuestions = parsed
	}
	if mode == entity.ModeFree && numQuestions > entity.FreeModeMaxQuestions {
		numQuestions = entity.FreeModeMaxQuestions
	}

	durationSeconds := 0
	for query, multiplier := range map[string]int{"hours": 3600, "minutes": 60} {
		raw := c.Query(query)
		if raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%w: invalid %s", apperrors.ErrValidation, query)
		}
		durationSeconds += parsed * multiplier
	}
	if durationSeconds <= 0 {
		durationSeconds = defaultAttemptDurationSeconds
	}

	return &entity.Attempt{
		CourseCode:      strings.ToUpper(strings.TrimSpace(course)),
		NumQuestions:    numQuestions,
		DurationSeconds: durationSeconds,
		Mode:            mode,
	}, nil
}

// GetQuestions выдает вопросы курса без сохраненной конфигурации (JSON API)
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	course := c.Query("course")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	session := middleware.SessionFromContext(c)
	mode := session.CurrentMode()

	status := h.accessService.StatusFor(session)
	if err := h.accessService.Resolve(course, mode, status); err != nil {
		h.handleQuizError(c, err)
		return
	}

	questions, err := h.quizService.SelectQuestions(course, mode, limit)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// Submit подсчитывает результат попытки и сохраняет его в сессии.
// Для авторизованных пользователей результат записывается в историю.
func (h *QuizHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFromContext(c)
	attempt := session.Attempt
	if attempt == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No test configured. Configure a test first."})
		return
	}

	score, total := h.resultService.ScoreSubmission(req.Answers)

	attempt.Answers = req.Answers
	attempt.Score = score
	attempt.Total = total
	if err := h.sessions.Persist(c, session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	// Ошибка записи в историю не мешает показать результат
	if err := h.resultService.PersistScore(session, attempt.CourseCode, score, total); err != nil {
		log.Printf("[QuizHandler.Submit] Score persistence failed: %v", err)
	}

	c.JSON(http.StatusOK, dto.SubmitResponse{Score: score, Total: total})
}

// GetResult возвращает итог последней отправленной попытки
func (h *QuizHandler) GetResult(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	attempt := session.Attempt
	if attempt == nil || attempt.Answers == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No submitted attempt found"})
		return
	}

	c.JSON(http.StatusOK, dto.ResultResponse{
		Score:  attempt.Score,
		Total:  attempt.Total,
		Course: attempt.CourseCode,
	})
}

// GetReview возвращает построчный разбор последней отправленной попытки
func (h *QuizHandler) GetReview(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	attempt := session.Attempt
	if attempt == nil || attempt.Answers == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No submitted attempt found"})
		return
	}

	items := h.resultService.BuildReview(attempt.Answers)
	c.JSON(http.StatusOK, gin.H{
		"course": attempt.CourseCode,
		"score":  attempt.Score,
		"total":  attempt.Total,
		"items":  items,
	})
}

// GetCourseInfo возвращает сведения о курсе (JSON API).
// Доступ к курсу проверяется по текущему тарифу сессии; в бесплатном режиме
// заявленное число вопросов ограничено лимитом бесплатной попытки.
func (h *QuizHandler) GetCourseInfo(c *gin.Context) {
	course := c.Query("course")
	if strings.TrimSpace(course) == "" {
		h.handleQuizError(c, service.ErrNoCourseSelected)
		return
	}

	session := middleware.SessionFromContext(c)
	mode := session.CurrentMode()

	status := h.accessService.StatusFor(session)
	if err := h.accessService.Resolve(course, mode, status); err != nil {
		h.handleQuizError(c, err)
		return
	}

	info, err := h.quizService.CourseInfo(course)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	if mode == entity.ModeFree && info.TotalQuestions > entity.FreeModeMaxQuestions {
		info.TotalQuestions = entity.FreeModeMaxQuestions
	}
	info.Simulator = string(mode)
	c.JSON(http.StatusOK, info)
}

// GetAvailableCodes возвращает коды курсов по префиксу предмета (JSON API)
func (h *QuizHandler) GetAvailableCodes(c *gin.Context) {
	codes, err := h.quizService.AvailableCodes(c.Query("subject"))
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AvailableCodesResponse{Codes: codes})
}

// handleQuizError обрабатывает ошибки и возвращает соответствующий HTTP-статус
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrPaymentRequired) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, service.ErrCourseNotFree) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, service.ErrNoCourseSelected) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuizHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
