package services

import (
	"context"
	"errors"
	"testing"

	"battle-royale-backend/internal/battle"
	"battle-royale-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizRows() []models.Question {
	return []models.Question{
		{ID: 10, Type: "single", Text: "first", Points: 100, Options: []models.Option{
			{ID: 1, Text: "yes", IsCorrect: true}, {ID: 2, Text: "no"},
		}},
		{ID: 11, Type: "multiple", Text: "second", Points: 150, Options: []models.Option{
			{ID: 3, IsCorrect: true}, {ID: 4, IsCorrect: true}, {ID: 5},
		}},
	}
}

func TestCatalogServiceServesBoundQuiz(t *testing.T) {
	var asked uint
	s := newCatalogService(nil, func(_ context.Context, quizID uint) ([]models.Question, error) {
		asked = quizID
		return quizRows(), nil
	})

	settings := battle.Settings{QuizID: 5, TotalQuestions: 2}
	require.NoError(t, s.Bind(context.Background(), "ABC123", settings))
	assert.Equal(t, uint(5), asked)

	q, err := s.NextQuestion(context.Background(), "ABC123", 2)
	require.NoError(t, err)
	assert.Equal(t, uint(11), q.ID)
	assert.Equal(t, battle.QuestionMultiple, q.Type)
	assert.ElementsMatch(t, []uint{3, 4}, q.CorrectIDs())

	_, err = s.NextQuestion(context.Background(), "ABC123", 3)
	assert.ErrorIs(t, err, battle.ErrQuestionNotFound)

	s.Release("ABC123")
	_, err = s.NextQuestion(context.Background(), "ABC123", 1)
	assert.ErrorIs(t, err, battle.ErrQuestionNotFound)
}

func TestCatalogServiceBindErrors(t *testing.T) {
	failing := newCatalogService(nil, func(context.Context, uint) ([]models.Question, error) {
		return nil, errors.New("connection refused")
	})
	err := failing.Bind(context.Background(), "ABC123", battle.Settings{QuizID: 1})
	assert.ErrorIs(t, err, battle.ErrCatalog)

	empty := newCatalogService(nil, func(context.Context, uint) ([]models.Question, error) {
		return nil, nil
	})
	err = empty.Bind(context.Background(), "ABC123", battle.Settings{QuizID: 1})
	assert.ErrorIs(t, err, battle.ErrQuestionNotFound)
}

func TestToBattleQuestionDefaultsToSingle(t *testing.T) {
	q := ToBattleQuestion(models.Question{ID: 1, Text: "t", Options: []models.Option{{ID: 7, IsCorrect: true}}})
	assert.Equal(t, battle.QuestionSingle, q.Type)
	assert.Equal(t, []uint{7}, q.CorrectIDs())
}
