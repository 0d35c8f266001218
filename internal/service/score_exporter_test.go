package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/examsim-api/internal/domain/repository"
)

func TestScoreExporter_AllRows(t *testing.T) {
	// Arrange
	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mockScoreRepo := new(MockScoreRepository)
	mockScoreRepo.On("GetAllWithUsernames").Return([]repository.LeaderboardEntry{
		{Username: "student", CourseCode: "MTH101", Score: 7, Total: 10, CreatedAt: created},
		{Username: "admin", CourseCode: "CHM101", Score: 9, Total: 10, CreatedAt: created},
	}, nil)

	exporter := NewScoreExporter(mockScoreRepo)

	// Act
	rows, err := exporter.AllRows()

	// Assert
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "student", rows[0].Username)
	assert.Equal(t, "MTH101", rows[0].CourseCode)
	assert.Equal(t, 7, rows[0].Score, "Числовой результат должен переноситься в строку экспорта")
	assert.Equal(t, 10, rows[0].Total)
	assert.Equal(t, created, rows[0].CreatedAt)
	mockScoreRepo.AssertExpectations(t)
}

func TestScoreExporter_AllRows_RepoError(t *testing.T) {
	// Arrange
	mockScoreRepo := new(MockScoreRepository)
	mockScoreRepo.On("GetAllWithUsernames").Return(nil, errors.New("db down"))

	exporter := NewScoreExporter(mockScoreRepo)

	// Act
	rows, err := exporter.AllRows()

	// Assert
	require.Error(t, err)
	assert.Nil(t, rows)
}
