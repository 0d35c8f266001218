package service

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/yourusername/examsim-api/internal/domain/entity"
	"github.com/yourusername/examsim-api/internal/domain/repository"
	"github.com/yourusername/examsim-api/internal/handler/dto"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

// courseNames отображает префикс кода курса в полное название предмета.
// Неизвестные префиксы показываются как есть.
var courseNames = map[string]string{
	"MTH": "Mathematics",
	"CHM": "Chemistry",
	"PHY": "Physics",
	"BIO": "Biology",
	"ENG": "English",
	"ECO": "Economics",
	"GST": "General Studies",
	"STA": "Statistics",
	"CSC": "Computer Science",
}

// CourseDisplayName возвращает человекочитаемое название курса по его коду
func CourseDisplayName(courseCode string) string {
	code := strings.ToUpper(strings.TrimSpace(courseCode))
	if name, ok := courseNames[coursePrefix(code)]; ok {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}

// coursePrefix извлекает буквенный префикс из кода курса ("MTH101" -> "MTH")
func coursePrefix(courseCode string) string {
	code := strings.ToUpper(strings.TrimSpace(courseCode))
	for i, r := range code {
		if r >= '0' && r <= '9' {
			return code[:i]
		}
	}
	return code
}

// QuizService отвечает за выбор вопросов и каталог курсов
type QuizService struct {
	questionRepo repository.QuestionRepository
}

// NewQuizService создает новый сервис вопросов
func NewQuizService(questionRepo repository.QuestionRepository) *QuizService {
	return &QuizService{questionRepo: questionRepo}
}

// SelectQuestions выбирает случайный набор вопросов курса с учетом режима.
// В бесплатном режиме размер выборки ограничен сверху независимо от запроса.
// Ответы и решения включаются в выдачу только в учебном режиме.
func (s *QuizService) SelectQuestions(courseCode string, mode entity.SimulatorMode, requestedCount int) ([]dto.QuestionView, error) {
	courseCode = strings.ToUpper(strings.TrimSpace(courseCode))
	if courseCode == "" {
		return nil, ErrNoCourseSelected
	}

	count := requestedCount
	if count <= 0 {
		count = entity.DefaultQuestionCount
	}
	if mode == entity.ModeFree && count > entity.FreeModeMaxQuestions {
		count = entity.FreeModeMaxQuestions
	}

	questions, err := s.questionRepo.GetRandomByCourse(courseCode, count)
	if err != nil {
		log.Printf("[QuizService.SelectQuestions] Failed to fetch questions for course %s: %v", courseCode, err)
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions for course %s", apperrors.ErrNotFound, courseCode)
	}

	includeAnswers := mode.ExposesAnswers()
	views := make([]dto.QuestionView, 0, len(questions))
	for i := range questions {
		views = append(views, dto.NewQuestionView(&questions[i], includeAnswers))
	}
	return views, nil
}

// CourseInfo возвращает сведения о курсе для экрана настройки теста
func (s *QuizService) CourseInfo(courseCode string) (*dto.ConfigureTestResponse, error) {
	courseCode = strings.ToUpper(strings.TrimSpace(courseCode))
	if courseCode == "" {
		return nil, ErrNoCourseSelected
	}

	total, err := s.questionRepo.CountByCourse(courseCode)
	if err != nil {
		log.Printf("[QuizService.CourseInfo] Failed to count questions for course %s: %v", courseCode, err)
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: course %s", apperrors.ErrNotFound, courseCode)
	}

	return &dto.ConfigureTestResponse{
		Course:         courseCode,
		CourseFullName: CourseDisplayName(courseCode),
		TotalQuestions: total,
	}, nil
}

// TotalQuestions возвращает количество вопросов в курсе без проверки наличия
func (s *QuizService) TotalQuestions(courseCode string) (int64, error) {
	return s.questionRepo.CountByCourse(strings.ToUpper(strings.TrimSpace(courseCode)))
}

// AvailableCodes возвращает отсортированный список кодов курсов по префиксу предмета
func (s *QuizService) AvailableCodes(subjectPrefix string) ([]string, error) {
	prefix := strings.ToUpper(strings.TrimSpace(subjectPrefix))
	if prefix == "" {
		return nil, fmt.Errorf("%w: subject prefix is required", apperrors.ErrValidation)
	}

	codes, err := s.questionRepo.DistinctCoursesByPrefix(prefix)
	if err != nil {
		log.Printf("[QuizService.AvailableCodes] Failed to list courses for prefix %s: %v", prefix, err)
		return nil, err
	}
	sort.Strings(codes)
	return codes, nil
}

// Catalog возвращает каталог предметов, доступных в указанном режиме
func (s *QuizService) Catalog(mode entity.SimulatorMode) dto.CourseCatalogResponse {
	var prefixes []string
	if mode == entity.ModeFree {
		prefixes = entity.FreeCoursePrefixes
	} else {
		prefixes = make([]string, 0, len(courseNames))
		for prefix := range courseNames {
			prefixes = append(prefixes, prefix)
		}
		sort.Strings(prefixes)
	}

	subjects := make([]dto.SubjectDTO, 0, len(prefixes))
	for _, prefix := range prefixes {
		name := prefix
		if full, ok := courseNames[prefix]; ok {
			name = full
		}
		subjects = append(subjects, dto.SubjectDTO{Prefix: prefix, Name: name})
	}
	return dto.CourseCatalogResponse{
		Simulator: string(mode),
		Subjects:  subjects,
	}
}
