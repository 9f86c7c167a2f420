package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreCorrectSingle(t *testing.T) {
	p := NewScoringPolicy()
	q := singleQuestion(1)

	points, correct, streak := p.Score(q, &Submission{AnswerIDs: right(q)}, 0)
	assert.True(t, correct)
	assert.Equal(t, 100, points)
	assert.Equal(t, 1, streak)
}

func TestScoreWrongOrMissingResetsStreak(t *testing.T) {
	p := NewScoringPolicy()
	q := singleQuestion(1)

	points, correct, streak := p.Score(q, &Submission{AnswerIDs: wrong(q)}, 5)
	assert.False(t, correct)
	assert.Equal(t, 0, points)
	assert.Equal(t, 0, streak)

	points, correct, streak = p.Score(q, nil, 5)
	assert.False(t, correct)
	assert.Equal(t, 0, points)
	assert.Equal(t, 0, streak)
}

func TestStreakBonusSteps(t *testing.T) {
	p := NewScoringPolicy()
	cases := map[int]int{0: 0, 1: 0, 2: 10, 3: 10, 4: 25, 6: 25, 7: 50, 30: 50}
	for streak, want := range cases {
		assert.Equal(t, want, p.StreakBonus(streak), "streak %d", streak)
	}

	prev := 0
	for streak := 0; streak < 50; streak++ {
		b := p.StreakBonus(streak)
		assert.GreaterOrEqual(t, b, prev, "bonus decreased at streak %d", streak)
		prev = b
	}

	q := singleQuestion(1)
	points, _, streak := p.Score(q, &Submission{AnswerIDs: right(q)}, 4)
	assert.Equal(t, 125, points)
	assert.Equal(t, 5, streak)
}

func TestScoreMultipleNeedsExactSet(t *testing.T) {
	p := NewScoringPolicy()
	q := Question{
		ID:     2,
		Type:   QuestionMultiple,
		Points: 200,
		Answers: []AnswerOption{
			{ID: 1, IsCorrect: true},
			{ID: 2, IsCorrect: true},
			{ID: 3},
		},
	}

	_, correct, _ := p.Score(q, &Submission{AnswerIDs: []uint{2, 1}}, 0)
	assert.True(t, correct)

	points, correct, _ := p.Score(q, &Submission{AnswerIDs: []uint{1}}, 0)
	assert.False(t, correct)
	assert.Zero(t, points)

	_, correct, _ = p.Score(q, &Submission{AnswerIDs: []uint{1, 2, 3}}, 0)
	assert.False(t, correct)
}

func TestScoreIgnoresResponseTime(t *testing.T) {
	p := NewScoringPolicy()
	q := singleQuestion(3)

	fast, _, _ := p.Score(q, &Submission{AnswerIDs: right(q), ResponseTimeMS: 120}, 2)
	slow, _, _ := p.Score(q, &Submission{AnswerIDs: right(q), ResponseTimeMS: 29000}, 2)
	assert.Equal(t, fast, slow)
}
