package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/examsim-api/internal/domain/entity"
	"github.com/yourusername/examsim-api/internal/handler/dto"
	"github.com/yourusername/examsim-api/internal/middleware"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
	"github.com/yourusername/examsim-api/internal/service"
)

// AuthHandler обрабатывает регистрацию, вход и выход
type AuthHandler struct {
	authService   *service.AuthService
	googleService *service.GoogleOAuthService
	sessions      *middleware.SessionMiddleware
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(
	authService *service.AuthService,
	googleService *service.GoogleOAuthService,
	sessions *middleware.SessionMiddleware,
) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		googleService: googleService,
		sessions:      sessions,
	}
}

// Register обрабатывает запрос на регистрацию
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	if err := h.startSession(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{User: dto.NewUserResponse(user)})
}

// Login обрабатывает запрос на вход
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	if err := h.startSession(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{User: dto.NewUserResponse(user)})
}

// GoogleAuth выполняет вход через Google по authorization code либо по
// готовому id_token. Совпадение email привязывает вход к существующему аккаунту.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req dto.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var profile *service.GoogleProfile
	var err error
	switch {
	case req.IDToken != "":
		profile, err = h.googleService.VerifyIDToken(c.Request.Context(), req.IDToken)
	case req.Code != "":
		profile, err = h.googleService.Exchange(c.Request.Context(), req.Code)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either code or id_token is required"})
		return
	}
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	user, err := h.authService.UpsertOAuthUser(profile.Email, profile.Name, profile.Picture)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	if err := h.startSession(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{User: dto.NewUserResponse(user)})
}

// Logout уничтожает сессию пользователя
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to destroy session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// startSession создает новую сессию для пользователя, сохраняя выбранный
// тариф текущей сессии
func (h *AuthHandler) startSession(c *gin.Context, user *entity.User) error {
	current := middleware.SessionFromContext(c)
	session := &entity.Session{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Mode:     current.Mode,
	}
	return h.sessions.Persist(c, session)
}

// handleAuthError обрабатывает ошибки и возвращает соответствующий HTTP-статус
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, service.ErrGoogleTokenVerificationFailed) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google sign-in failed"})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in AuthHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
