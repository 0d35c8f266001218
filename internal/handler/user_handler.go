package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/examsim-api/internal/handler/dto"
	"github.com/yourusername/examsim-api/internal/middleware"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
	"github.com/yourusername/examsim-api/internal/service"
)

const adminStatus = "Admin"

// UserHandler обрабатывает запросы профиля, отзывов и таблицы лидеров
type UserHandler struct {
	userService   *service.UserService
	resultService *service.ResultService
	scoreExporter *service.ScoreExporter
	sessions      *middleware.SessionMiddleware
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(
	userService *service.UserService,
	resultService *service.ResultService,
	scoreExporter *service.ScoreExporter,
	sessions *middleware.SessionMiddleware,
) *UserHandler {
	return &UserHandler{
		userService:   userService,
		resultService: resultService,
		scoreExporter: scoreExporter,
		sessions:      sessions,
	}
}

// Me возвращает профиль текущего пользователя
func (h *UserHandler) Me(c *gin.Context) {
	session := middleware.SessionFromContext(c)

	profile, err := h.userService.GetProfile(session.UserID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe обновляет имя текущего пользователя
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFromContext(c)
	profile, err := h.userService.UpdateUsername(session.UserID, req.Username)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	// Имя кэшируется в сессии, обновляем его вместе с профилем
	session.Username = profile.Username
	if err := h.sessions.Persist(c, session); err != nil {
		log.Printf("[UserHandler.UpdateMe] Failed to refresh session: %v", err)
	}

	c.JSON(http.StatusOK, profile)
}

// UploadPicture сохраняет загруженный аватар текущего пользователя
func (h *UserHandler) UploadPicture(c *gin.Context) {
	session := middleware.SessionFromContext(c)

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Picture file is required"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	path, err := h.userService.SaveProfilePicture(session.UserID, fileHeader.Filename, fileHeader.Size, src)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile_picture": path})
}

// SubmitFeedback сохраняет отзыв текущего пользователя
func (h *UserHandler) SubmitFeedback(c *gin.Context) {
	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFromContext(c)
	if err := h.userService.SubmitFeedback(session, req.Message); err != nil {
		h.handleUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Feedback received"})
}

// Leaderboard возвращает десять лучших результатов
func (h *UserHandler) Leaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	board, err := h.userService.Leaderboard(limit)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// ScoreHistory возвращает историю результатов текущего пользователя
func (h *UserHandler) ScoreHistory(c *gin.Context) {
	session := middleware.SessionFromContext(c)

	entries, err := h.resultService.ScoreHistory(session.UserID, 50, 0)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": entries})
}

// ExportScores экспортирует все результаты в CSV или Excel. Только для администратора.
func (h *UserHandler) ExportScores(c *gin.Context) {
	session := middleware.SessionFromContext(c)

	profile, err := h.userService.GetProfile(session.UserID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	if profile.Status != adminStatus {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	rows, err := h.scoreExporter.AllRows()
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	filename := fmt.Sprintf("scores_%s", time.Now().Format("2006-01-02"))
	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		h.exportXLSX(c, rows, filename)
	default:
		h.exportCSV(c, rows, filename)
	}
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *UserHandler) exportCSV(c *gin.Context, rows []service.ScoreExportRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Username", "Course", "Score", "Total", "Date"})
	for _, r := range rows {
		writer.Write([]string{
			sanitizeForExcel(r.Username),
			r.CourseCode,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Total),
			r.CreatedAt.Format(time.RFC3339),
		})
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *UserHandler) exportXLSX(c *gin.Context, rows []service.ScoreExportRow, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Scores"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[UserHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Username", "Course", "Score", "Total", "Date"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[UserHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{sanitizeForExcel(r.Username), r.CourseCode, r.Score, r.Total, r.CreatedAt.Format(time.RFC3339)}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[UserHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[UserHandler] Ошибка при Flush: %v", err)
	}
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[UserHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleUserError обрабатывает ошибки и возвращает соответствующий HTTP-статус
func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in UserHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
