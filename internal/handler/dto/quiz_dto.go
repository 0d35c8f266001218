package dto

import (
	"github.com/yourusername/examsim-api/internal/domain/entity"
)

// QuestionView представляет вопрос в форме, безопасной для клиента.
// CorrectOption и Solution заполняются только в режиме study:
// остальные режимы не должны раскрывать ответы до отправки.
type QuestionView struct {
	ID            uint   `json:"id"`
	QuestionText  string `json:"question_text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option,omitempty"`
	Solution      string `json:"solution,omitempty"`
}

// NewQuestionView создает DTO вопроса. includeAnswers управляет раскрытием
// правильного ответа и решения.
func NewQuestionView(q *entity.Question, includeAnswers bool) QuestionView {
	view := QuestionView{
		ID:           q.ID,
		QuestionText: q.Text,
		OptionA:      q.OptionA,
		OptionB:      q.OptionB,
		OptionC:      q.OptionC,
		OptionD:      q.OptionD,
	}
	if includeAnswers {
		view.CorrectOption = q.CorrectOption
		view.Solution = q.SolutionOrFallback()
	}
	return view
}

// ReviewItem представляет одну строку разбора после отправки
type ReviewItem struct {
	ID            uint    `json:"id"`
	QuestionText  string  `json:"question_text"`
	OptionA       string  `json:"option_a"`
	OptionB       string  `json:"option_b"`
	OptionC       string  `json:"option_c"`
	OptionD       string  `json:"option_d"`
	UserAnswer    *string `json:"user_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	Solution      string  `json:"solution"`
}

// NewReviewItem создает строку разбора для вопроса и отправленного ответа
func NewReviewItem(q *entity.Question, userAnswer *string) ReviewItem {
	return ReviewItem{
		ID:            q.ID,
		QuestionText:  q.Text,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		UserAnswer:    userAnswer,
		CorrectAnswer: q.CorrectOption,
		Solution:      q.SolutionOrFallback(),
	}
}

// SubmitRequest представляет тело POST /submit
type SubmitRequest struct {
	Answers []entity.SubmittedAnswer `json:"answers" binding:"required"`
}

// SubmitResponse возвращается после подсчёта результата
type SubmitResponse struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// ResultResponse представляет итог последней попытки в сессии
type ResultResponse struct {
	Score  int    `json:"score"`
	Total  int    `json:"total"`
	Course string `json:"course"`
}

// CourseInfoResponse представляет ответ /api/course-info
type CourseInfoResponse struct {
	TotalQuestions int64 `json:"total_questions"`
}

// AvailableCodesResponse представляет ответ /api/available-codes
type AvailableCodesResponse struct {
	Codes []string `json:"codes"`
}

// ConfigureTestResponse представляет ответ /configure-test
type ConfigureTestResponse struct {
	Course         string `json:"course"`
	CourseFullName string `json:"course_full_name"`
	Simulator      string `json:"simulator"`
	TotalQuestions int64  `json:"total_questions"`
}

// AttemptConfigResponse представляет сохранённую конфигурацию попытки
type AttemptConfigResponse struct {
	Course          string `json:"course"`
	NumQuestions    int    `json:"num_questions"`
	DurationSeconds int    `json:"duration_seconds"`
	Simulator       string `json:"simulator"`
}

// SubjectDTO представляет предмет в каталоге курсов
type SubjectDTO struct {
	Prefix string `json:"prefix"`
	Name   string `json:"name"`
}

// CourseCatalogResponse представляет каталог предметов для тарифа
type CourseCatalogResponse struct {
	Simulator string       `json:"simulator"`
	Subjects  []SubjectDTO `json:"subjects"`
}
