package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSimulatorMode(t *testing.T) {
	tests := []struct {
		raw  string
		want SimulatorMode
	}{
		{"free", ModeFree},
		{"paid", ModePaid},
		{"study", ModeStudy},
		{"", ModeFree},
		{"premium", ModeFree},
		{"PAID", ModeFree}, // значения чувствительны к регистру
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSimulatorMode(tt.raw))
		})
	}
}

func TestSimulatorMode_ExposesAnswers(t *testing.T) {
	assert.False(t, ModeFree.ExposesAnswers())
	assert.False(t, ModePaid.ExposesAnswers())
	assert.True(t, ModeStudy.ExposesAnswers(), "Только study раскрывает ответы до отправки")
}

func TestSimulatorMode_RequiresPayment(t *testing.T) {
	assert.False(t, ModeFree.RequiresPayment())
	assert.True(t, ModePaid.RequiresPayment())
	assert.False(t, ModeStudy.RequiresPayment())
}

func TestSession_CurrentMode(t *testing.T) {
	s := &Session{}
	assert.Equal(t, ModeFree, s.CurrentMode(), "Сессия без режима по умолчанию free")

	s.Mode = ModeStudy
	assert.Equal(t, ModeStudy, s.CurrentMode())
}

func TestSubmittedAnswer_Chosen(t *testing.T) {
	label := "A"
	empty := ""

	answered := SubmittedAnswer{QuestionID: 1, Answer: &label}
	chosen, ok := answered.Chosen()
	assert.True(t, ok)
	assert.Equal(t, "A", chosen)

	skipped := SubmittedAnswer{QuestionID: 2, Answer: nil}
	_, ok = skipped.Chosen()
	assert.False(t, ok, "nil ответ считается пропуском")

	blank := SubmittedAnswer{QuestionID: 3, Answer: &empty}
	_, ok = blank.Chosen()
	assert.False(t, ok, "Пустая строка считается пропуском")
}
