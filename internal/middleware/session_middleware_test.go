package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/examsim-api/internal/domain/entity"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memorySessionRepo - хранилище сессий в памяти для тестов middleware
type memorySessionRepo struct {
	sessions map[string]*entity.Session
	touched  map[string]int
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{
		sessions: make(map[string]*entity.Session),
		touched:  make(map[string]int),
	}
}

func (r *memorySessionRepo) Save(sessionID string, session *entity.Session) error {
	copied := *session
	r.sessions[sessionID] = &copied
	return nil
}

func (r *memorySessionRepo) Get(sessionID string) (*entity.Session, error) {
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *memorySessionRepo) Delete(sessionID string) error {
	delete(r.sessions, sessionID)
	return nil
}

func (r *memorySessionRepo) Touch(sessionID string) error {
	r.touched[sessionID]++
	return nil
}

func newSessionTestRouter(repo *memorySessionRepo) (*gin.Engine, *SessionMiddleware) {
	m := NewSessionMiddleware(repo, "session_id", 3600, false)
	router := gin.New()
	router.Use(m.Load())
	return router, m
}

func TestSessionMiddleware_AnonymousWithoutCookie(t *testing.T) {
	repo := newMemorySessionRepo()
	router, _ := newSessionTestRouter(repo)

	router.GET("/probe", func(c *gin.Context) {
		session := SessionFromContext(c)
		assert.False(t, session.IsAuthenticated())
		assert.Empty(t, SessionIDFromContext(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/probe", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionMiddleware_LoadsExistingSession(t *testing.T) {
	repo := newMemorySessionRepo()
	require.NoError(t, repo.Save("sid-1", &entity.Session{UserID: 7, Username: "student", Mode: entity.ModePaid}))

	router, _ := newSessionTestRouter(repo)
	router.GET("/probe", func(c *gin.Context) {
		session := SessionFromContext(c)
		assert.Equal(t, uint(7), session.UserID)
		assert.Equal(t, entity.ModePaid, session.Mode)
		assert.Equal(t, "sid-1", SessionIDFromContext(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sid-1"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, repo.touched["sid-1"], "TTL должен продлеваться при каждом обращении")
}

func TestSessionMiddleware_UnknownCookieFallsBackToAnonymous(t *testing.T) {
	repo := newMemorySessionRepo()
	router, _ := newSessionTestRouter(repo)

	router.GET("/probe", func(c *gin.Context) {
		assert.False(t, SessionFromContext(c).IsAuthenticated())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "expired-session"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionMiddleware_PersistSetsCookie(t *testing.T) {
	repo := newMemorySessionRepo()
	router, m := newSessionTestRouter(repo)

	router.POST("/login", func(c *gin.Context) {
		err := m.Persist(c, &entity.Session{UserID: 7, Username: "student"})
		require.NoError(t, err)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1, "Persist должен выставить cookie сессии")
	assert.Equal(t, "session_id", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	saved, err := repo.Get(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, uint(7), saved.UserID)
}

func TestSessionMiddleware_RequireAuth(t *testing.T) {
	repo := newMemorySessionRepo()
	require.NoError(t, repo.Save("sid-auth", &entity.Session{UserID: 7}))

	router, m := newSessionTestRouter(repo)
	router.GET("/private", m.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Без сессии - 401
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/private", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// С аутентифицированной сессией - 200
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/private", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sid-auth"})
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionMiddleware_Destroy(t *testing.T) {
	repo := newMemorySessionRepo()
	require.NoError(t, repo.Save("sid-del", &entity.Session{UserID: 7}))

	router, m := newSessionTestRouter(repo)
	router.POST("/logout", func(c *gin.Context) {
		require.NoError(t, m.Destroy(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sid-del"})
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	_, err := repo.Get("sid-del")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "Сессия должна быть удалена")
}
