package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yourusername/examsim-api/internal/domain/entity"
	"github.com/yourusername/examsim-api/internal/domain/repository"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

// Ключи контекста Gin для данных сессии
const (
	ContextSessionKey   = "session"
	ContextSessionIDKey = "session_id"
)

// SessionMiddleware загружает сессию по непрозрачному cookie-идентификатору.
// Состояние сессии живет в Redis; в cookie хранится только случайный ID.
type SessionMiddleware struct {
	sessions     repository.SessionRepository
	cookieName   string
	cookieMaxAge int
	secure       bool
}

// NewSessionMiddleware создает новый middleware сессий
func NewSessionMiddleware(sessions repository.SessionRepository, cookieName string, cookieMaxAge int, secure bool) *SessionMiddleware {
	if cookieName == "" {
		cookieName = "session_id"
	}
	return &SessionMiddleware{
		sessions:     sessions,
		cookieName:   cookieName,
		cookieMaxAge: cookieMaxAge,
		secure:       secure,
	}
}

// Load читает cookie и кладет сессию в контекст запроса.
// Запрос без валидной сессии получает пустую анонимную сессию:
// она не сохраняется, пока обработчик явно не вызовет Persist.
func (m *SessionMiddleware) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(m.cookieName)
		if err == nil && sessionID != "" {
			session, getErr := m.sessions.Get(sessionID)
			if getErr == nil {
				// Продлеваем TTL на каждом обращении
				if touchErr := m.sessions.Touch(sessionID); touchErr != nil {
					log.Printf("[SessionMiddleware] Failed to touch session %s: %v", sessionID, touchErr)
				}
				c.Set(ContextSessionKey, session)
				c.Set(ContextSessionIDKey, sessionID)
				c.Next()
				return
			}
			if !errors.Is(getErr, apperrors.ErrNotFound) {
				log.Printf("[SessionMiddleware] Failed to load session %s: %v", sessionID, getErr)
			}
		}

		c.Set(ContextSessionKey, &entity.Session{})
		c.Set(ContextSessionIDKey, "")
		c.Next()
	}
}

// RequireAuth пропускает только запросы с аутентифицированной сессией
func (m *SessionMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFromContext(c)
		if session == nil || !session.IsAuthenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Persist сохраняет сессию в Redis и выставляет cookie, если его еще нет
func (m *SessionMiddleware) Persist(c *gin.Context, session *entity.Session) error {
	sessionID := SessionIDFromContext(c)
	if sessionID == "" {
		sessionID = uuid.New().String()
		c.SetCookie(m.cookieName, sessionID, m.cookieMaxAge, "/", "", m.secure, true)
		c.Set(ContextSessionIDKey, sessionID)
	}
	if err := m.sessions.Save(sessionID, session); err != nil {
		log.Printf("[SessionMiddleware] Failed to save session %s: %v", sessionID, err)
		return err
	}
	c.Set(ContextSessionKey, session)
	return nil
}

// Destroy удаляет сессию из Redis и сбрасывает cookie
func (m *SessionMiddleware) Destroy(c *gin.Context) error {
	sessionID := SessionIDFromContext(c)
	if sessionID == "" {
		return nil
	}
	if err := m.sessions.Delete(sessionID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[SessionMiddleware] Failed to delete session %s: %v", sessionID, err)
		return err
	}
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
	c.Set(ContextSessionKey, &entity.Session{})
	c.Set(ContextSessionIDKey, "")
	return nil
}

// SessionFromContext возвращает сессию текущего запроса
func SessionFromContext(c *gin.Context) *entity.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return &entity.Session{}
	}
	session, ok := value.(*entity.Session)
	if !ok || session == nil {
		return &entity.Session{}
	}
	return session
}

// SessionIDFromContext возвращает идентификатор сессии текущего запроса
func SessionIDFromContext(c *gin.Context) string {
	value, exists := c.Get(ContextSessionIDKey)
	if !exists {
		return ""
	}
	id, _ := value.(string)
	return id
}
