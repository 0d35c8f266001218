package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/examsim-api/internal/domain/entity"
	"github.com/yourusername/examsim-api/internal/domain/repository"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

// AuthService предоставляет методы для регистрации и входа пользователей
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Register регистрирует нового пользователя с паролем.
// Email уникален: повторная регистрация возвращает ErrConflict.
func (s *AuthService) Register(username, email, password string) (*entity.User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", apperrors.ErrValidation)
	}

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: password, // хешируется в BeforeSave
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
		}
		log.Printf("[AuthService.Register] Failed to create user %s: %v", email, err)
		return nil, err
	}

	log.Printf("[AuthService.Register] User registered: %s (ID: %d)", email, user.ID)
	return user, nil
}

// Login проверяет учетные данные и возвращает пользователя.
// Несуществующий email и неверный пароль дают одинаковую ошибку,
// чтобы не раскрывать, какие адреса зарегистрированы.
func (s *AuthService) Login(email, password string) (*entity.User, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		log.Printf("[AuthService.Login] Failed to fetch user %s: %v", email, err)
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	return user, nil
}

// UpsertOAuthUser находит пользователя по email или создает нового без пароля.
// Используется при входе через внешнего провайдера: совпадение по email
// привязывает вход к существующему аккаунту.
func (s *AuthService) UpsertOAuthUser(email, name, pictureURL string) (*entity.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: provider did not return an email", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(email)
	if err == nil {
		// Обновляем аватар, если провайдер прислал новый, а свой не загружен
		if pictureURL != "" && user.ProfilePicture == "" {
			if updErr := s.userRepo.UpdateProfile(user.ID, map[string]interface{}{"profile_picture": pictureURL}); updErr != nil {
				log.Printf("[AuthService.UpsertOAuthUser] Failed to update picture for user %d: %v", user.ID, updErr)
			} else {
				user.ProfilePicture = pictureURL
			}
		}
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[AuthService.UpsertOAuthUser] Failed to fetch user %s: %v", email, err)
		return nil, err
	}

	username := strings.TrimSpace(name)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	user = &entity.User{
		Username:       username,
		Email:          email,
		ProfilePicture: pictureURL,
	}
	if err := s.userRepo.Create(user); err != nil {
		log.Printf("[AuthService.UpsertOAuthUser] Failed to create user %s: %v", email, err)
		return nil, err
	}

	log.Printf("[AuthService.UpsertOAuthUser] New user created via OAuth: %s (ID: %d)", email, user.ID)
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
