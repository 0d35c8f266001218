package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/examsim-api/internal/config"
	"github.com/yourusername/examsim-api/internal/domain/entity"
	"github.com/yourusername/examsim-api/internal/domain/repository"
	"github.com/yourusername/examsim-api/internal/handler/dto"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

// Расширения, допустимые для аватара
var allowedPictureExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// UserService предоставляет методы профиля, отзывов и таблицы лидеров
type UserService struct {
	userRepo     repository.UserRepository
	scoreRepo    repository.ScoreRepository
	feedbackRepo repository.FeedbackRepository
	emailService EmailService
	uploads      config.UploadsConfig
}

// NewUserService создает новый сервис пользователей
func NewUserService(
	userRepo repository.UserRepository,
	scoreRepo repository.ScoreRepository,
	feedbackRepo repository.FeedbackRepository,
	emailService EmailService,
	uploads config.UploadsConfig,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		scoreRepo:    scoreRepo,
		feedbackRepo: feedbackRepo,
		emailService: emailService,
		uploads:      uploads,
	}
}

// GetProfile возвращает профиль пользователя по ID
func (s *UserService) GetProfile(userID uint) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// UpdateUsername меняет имя пользователя и возвращает обновленный профиль
func (s *UserService) UpdateUsername(userID uint, username string) (*dto.UserResponse, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 50 {
		return nil, fmt.Errorf("%w: username must be between 3 and 50 characters", apperrors.ErrValidation)
	}

	if err := s.userRepo.UpdateProfile(userID, map[string]interface{}{"username": username}); err != nil {
		log.Printf("[UserService.UpdateUsername] Failed to update username for user %d: %v", userID, err)
		return nil, err
	}
	return s.GetProfile(userID)
}

// Leaderboard возвращает первые limit результатов, упорядоченные по доле
// правильных ответов
func (s *UserService) Leaderboard(limit int) (*dto.LeaderboardResponse, error) {
	if limit <= 0 {
		limit = 10
	}

	entries, err := s.scoreRepo.GetLeaderboard(limit)
	if err != nil {
		log.Printf("[UserService.Leaderboard] Failed to load leaderboard: %v", err)
		return nil, err
	}

	resp := &dto.LeaderboardResponse{Entries: make([]dto.LeaderboardEntryDTO, 0, len(entries))}
	for i, entry := range entries {
		resp.Entries = append(resp.Entries, dto.LeaderboardEntryDTO{
			Rank:       i + 1,
			Username:   entry.Username,
			CourseCode: entry.CourseCode,
			Score:      entry.Score,
			Total:      entry.Total,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return resp, nil
}

// SubmitFeedback сохраняет отзыв и уведомляет администратора по почте.
// Ошибка отправки письма не считается ошибкой операции.
func (s *UserService) SubmitFeedback(session *entity.Session, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("%w: feedback message is required", apperrors.ErrValidation)
	}
	if session == nil || !session.IsAuthenticated() {
		return fmt.Errorf("%w: login required to leave feedback", apperrors.ErrUnauthorized)
	}

	feedback := &entity.Feedback{
		UserID:  session.UserID,
		Message: message,
	}
	if err := s.feedbackRepo.Create(feedback); err != nil {
		log.Printf("[UserService.SubmitFeedback] Failed to save feedback from user %d: %v", session.UserID, err)
		return err
	}

	go func(username, email, message string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.emailService.SendFeedbackNotification(ctx, username, email, message); err != nil {
			log.Printf("[UserService.SubmitFeedback] Failed to send feedback notification: %v", err)
		}
	}(session.Username, session.Email, message)

	return nil
}

// SaveProfilePicture проверяет и сохраняет загруженный аватар, обновляя
// путь в профиле. Возвращает относительный путь к файлу.
func (s *UserService) SaveProfilePicture(userID uint, originalName string, size int64, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedPictureExts[ext] {
		return "", fmt.Errorf("%w: unsupported image type %s", apperrors.ErrValidation, ext)
	}
	if size <= 0 || size > s.uploads.MaxBytes {
		return "", fmt.Errorf("%w: image must be between 1 byte and %d bytes", apperrors.ErrValidation, s.uploads.MaxBytes)
	}

	if err := os.MkdirAll(s.uploads.Dir, 0o755); err != nil {
		log.Printf("[UserService.SaveProfilePicture] Failed to create uploads dir: %v", err)
		return "", err
	}

	storedName := uuid.New().String() + ext
	fullPath := filepath.Join(s.uploads.Dir, storedName)

	dst, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UserService.SaveProfilePicture] Failed to create file %s: %v", fullPath, err)
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, s.uploads.MaxBytes+1)); err != nil {
		os.Remove(fullPath)
		log.Printf("[UserService.SaveProfilePicture] Failed to write file %s: %v", fullPath, err)
		return "", err
	}

	relativePath := filepath.ToSlash(filepath.Join(s.uploads.Dir, storedName))
	if err := s.userRepo.UpdateProfile(userID, map[string]interface{}{"profile_picture": relativePath}); err != nil {
		os.Remove(fullPath)
		log.Printf("[UserService.SaveProfilePicture] Failed to update profile for user %d: %v", userID, err)
		return "", err
	}

	return relativePath, nil
}
