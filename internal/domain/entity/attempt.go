package entity

// SubmittedAnswer представляет один отправленный ответ.
// Answer - указатель: пропущенный вопрос приходит как null и не считается ошибкой.
type SubmittedAnswer struct {
	QuestionID uint    `json:"question_id"`
	Answer     *string `json:"answer"`
}

// Chosen возвращает выбранную метку и признак того, что ответ был дан
func (a SubmittedAnswer) Chosen() (string, bool) {
	if a.Answer == nil || *a.Answer == "" {
		return "", false
	}
	return *a.Answer, true
}

// Attempt хранит состояние одной настроенной попытки в рамках сессии.
// Перезаписывается при следующей настройке или отправке и не живёт дольше сессии.
type Attempt struct {
	CourseCode      string            `json:"course_code"`
	NumQuestions    int               `json:"num_questions"`
	DurationSeconds int               `json:"duration_seconds"`
	Mode            SimulatorMode     `json:"mode"`
	Answers         []SubmittedAnswer `json:"answers,omitempty"`
	Score           int               `json:"score"`
	Total           int               `json:"total"`
}

// Session представляет серверное состояние одной пользовательской сессии.
// Ключом служит непрозрачный идентификатор из куки; состояние лежит в Redis.
type Session struct {
	UserID   uint          `json:"user_id,omitempty"` // 0 - анонимная сессия
	Username string        `json:"username,omitempty"`
	Email    string        `json:"email,omitempty"`
	Mode     SimulatorMode `json:"mode,omitempty"`
	Attempt  *Attempt      `json:"attempt,omitempty"`
}

// IsAuthenticated возвращает true, если сессия привязана к пользователю
func (s *Session) IsAuthenticated() bool {
	return s.UserID != 0
}

// CurrentMode возвращает режим сессии, по умолчанию free
func (s *Session) CurrentMode() SimulatorMode {
	if s.Mode == "" {
		return ModeFree
	}
	return s.Mode
}
