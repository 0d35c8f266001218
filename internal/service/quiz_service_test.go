package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/examsim-api/internal/domain/entity"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

func questionsForTest(n int) []entity.Question {
	questions := make([]entity.Question, 0, n)
	for i := 1; i <= n; i++ {
		questions = append(questions, entity.Question{
			ID:            uint(i),
			CourseCode:    "MTH101",
			Text:          "Вопрос",
			OptionA:       "1",
			OptionB:       "2",
			OptionC:       "3",
			OptionD:       "4",
			CorrectOption: entity.OptionLabelA,
		})
	}
	return questions
}

func TestQuizService_SelectQuestions_FreeClampsToLimit(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	// В бесплатном режиме запрос на 50 вопросов урезается до потолка
	mockQuestionRepo.On("GetRandomByCourse", "MTH101", entity.FreeModeMaxQuestions).
		Return(questionsForTest(entity.FreeModeMaxQuestions), nil)

	quizService := NewQuizService(mockQuestionRepo)

	// Act
	views, err := quizService.SelectQuestions("MTH101", entity.ModeFree, 50)

	// Assert
	require.NoError(t, err)
	assert.Len(t, views, entity.FreeModeMaxQuestions)
	mockQuestionRepo.AssertExpectations(t)
}

func TestQuizService_SelectQuestions_DefaultCount(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("GetRandomByCourse", "PHY201", entity.DefaultQuestionCount).
		Return(questionsForTest(5), nil)

	quizService := NewQuizService(mockQuestionRepo)

	// Act
	views, err := quizService.SelectQuestions("phy201", entity.ModePaid, 0)

	// Assert
	require.NoError(t, err, "Нулевое количество заменяется значением по умолчанию")
	assert.Len(t, views, 5, "Если вопросов меньше запрошенного, возвращаются все")
	mockQuestionRepo.AssertExpectations(t)
}

func TestQuizService_SelectQuestions_PaidNotClamped(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("GetRandomByCourse", "MTH101", 40).
		Return(questionsForTest(40), nil)

	quizService := NewQuizService(mockQuestionRepo)

	// Act
	views, err := quizService.SelectQuestions("MTH101", entity.ModePaid, 40)

	// Assert
	require.NoError(t, err)
	assert.Len(t, views, 40, "Платный режим не ограничен бесплатным потолком")
}

func TestQuizService_SelectQuestions_EmptyCourse(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("GetRandomByCourse", "XYZ999", mock.Anything).
		Return([]entity.Question{}, nil)

	quizService := NewQuizService(mockQuestionRepo)

	// Act
	views, err := quizService.SelectQuestions("XYZ999", entity.ModeFree, 10)

	// Assert
	assert.Nil(t, views)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "Курс без вопросов должен давать not found")
}

func TestQuizService_SelectQuestions_NoCourse(t *testing.T) {
	quizService := NewQuizService(new(MockQuestionRepository))

	_, err := quizService.SelectQuestions("   ", entity.ModeFree, 10)

	assert.ErrorIs(t, err, ErrNoCourseSelected)
}

func TestQuizService_SelectQuestions_StudyExposesAnswers(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	questions := questionsForTest(2)
	questions[0].Solution = "Подробное решение"
	mockQuestionRepo.On("GetRandomByCourse", "MTH101", 2).Return(questions, nil)

	quizService := NewQuizService(mockQuestionRepo)

	// Act
	views, err := quizService.SelectQuestions("MTH101", entity.ModeStudy, 2)

	// Assert
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, entity.OptionLabelA, views[0].CorrectOption, "Study отдаёт правильный ответ")
	assert.Equal(t, "Подробное решение", views[0].Solution)
	assert.Equal(t, entity.SolutionFallback, views[1].Solution, "Пустое решение заменяется заглушкой")
}

func TestQuizService_SelectQuestions_FreeHidesAnswers(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("GetRandomByCourse", "MTH101", 3).Return(questionsForTest(3), nil)

	quizService := NewQuizService(mockQuestionRepo)

	// Act
	views, err := quizService.SelectQuestions("MTH101", entity.ModeFree, 3)

	// Assert
	require.NoError(t, err)
	for _, view := range views {
		assert.Empty(t, view.CorrectOption, "Вне study правильный ответ скрыт")
		assert.Empty(t, view.Solution)
	}
}

func TestQuizService_CourseInfo(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("CountByCourse", "MTH101").Return(int64(120), nil)

	quizService := NewQuizService(mockQuestionRepo)

	// Act
	info, err := quizService.CourseInfo("mth101")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "MTH101", info.Course)
	assert.Equal(t, int64(120), info.TotalQuestions)
	assert.Equal(t, "Mathematics (MTH101)", info.CourseFullName)
}

func TestQuizService_CourseInfo_UnknownCourse(t *testing.T) {
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("CountByCourse", "ABC000").Return(int64(0), nil)

	quizService := NewQuizService(mockQuestionRepo)

	_, err := quizService.CourseInfo("ABC000")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuizService_AvailableCodes_Sorted(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("DistinctCoursesByPrefix", "MTH").
		Return([]string{"MTH301", "MTH101", "MTH201"}, nil)

	quizService := NewQuizService(mockQuestionRepo)

	// Act
	codes, err := quizService.AvailableCodes("mth")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"MTH101", "MTH201", "MTH301"}, codes, "Коды должны быть отсортированы")
}

func TestQuizService_AvailableCodes_EmptyPrefix(t *testing.T) {
	quizService := NewQuizService(new(MockQuestionRepository))

	_, err := quizService.AvailableCodes("")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuizService_AvailableCodes_RepoError(t *testing.T) {
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("DistinctCoursesByPrefix", "CHM").
		Return(nil, errors.New("db down"))

	quizService := NewQuizService(mockQuestionRepo)

	_, err := quizService.AvailableCodes("CHM")

	assert.Error(t, err)
}

func TestQuizService_Catalog_FreeUsesAllowList(t *testing.T) {
	quizService := NewQuizService(new(MockQuestionRepository))

	catalog := quizService.Catalog(entity.ModeFree)

	require.Len(t, catalog.Subjects, len(entity.FreeCoursePrefixes))
	prefixes := make([]string, 0, len(catalog.Subjects))
	for _, subject := range catalog.Subjects {
		prefixes = append(prefixes, subject.Prefix)
	}
	assert.Equal(t, entity.FreeCoursePrefixes, prefixes)
}

func TestQuizService_Catalog_PaidHasMoreSubjects(t *testing.T) {
	quizService := NewQuizService(new(MockQuestionRepository))

	catalog := quizService.Catalog(entity.ModePaid)

	assert.Greater(t, len(catalog.Subjects), len(entity.FreeCoursePrefixes),
		"Платный каталог шире бесплатного")
}

func TestCourseDisplayName(t *testing.T) {
	assert.Equal(t, "Mathematics (MTH101)", CourseDisplayName("MTH101"))
	assert.Equal(t, "Chemistry (CHM205)", CourseDisplayName("chm205"))
	assert.Equal(t, "ZZZ999", CourseDisplayName("ZZZ999"), "Неизвестный префикс отображается как есть")
}
