package dto

import (
	"time"

	"github.com/yourusername/examsim-api/internal/domain/entity"
)

// RegisterRequest представляет тело запроса регистрации
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest представляет тело запроса входа
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleAuthRequest представляет тело запроса входа через Google.
// Клиент передает либо код авторизации, либо готовый id_token.
type GoogleAuthRequest struct {
	Code    string `json:"code"`
	IDToken string `json:"id_token"`
}

// UpdateProfileRequest представляет тело PUT /api/users/me
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
}

// UserResponse представляет публичный профиль пользователя
type UserResponse struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profile_picture"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUserResponse создает DTO из сущности пользователя
func NewUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
		Status:         user.Status,
		CreatedAt:      user.CreatedAt,
	}
}

// AuthResponse возвращается после успешной аутентификации
type AuthResponse struct {
	User UserResponse `json:"user"`
}

// FeedbackRequest представляет тело POST /api/feedback
type FeedbackRequest struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
}

// LeaderboardEntryDTO представляет одну строку таблицы лидеров
type LeaderboardEntryDTO struct {
	Rank       int       `json:"rank"`
	Username   string    `json:"username"`
	CourseCode string    `json:"course_code"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

// LeaderboardResponse представляет ответ /api/leaderboard
type LeaderboardResponse struct {
	Entries []LeaderboardEntryDTO `json:"entries"`
}

// ScoreHistoryEntry представляет один сохранённый результат пользователя
type ScoreHistoryEntry struct {
	CourseCode string    `json:"course_code"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

// PaymentVerifyResponse представляет ответ проверки платежа
type PaymentVerifyResponse struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
}
