package battle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// StaticCatalog serves in-memory question banks keyed by quiz id. A session
// plays the bank of its quiz in order.
type StaticCatalog struct {
	mu       sync.RWMutex
	banks    map[uint][]Question
	sessions map[string]uint
}

func NewStaticCatalog(questions []Question) *StaticCatalog {
	return &StaticCatalog{
		banks:    map[uint][]Question{0: questions},
		sessions: make(map[string]uint),
	}
}

// AddQuiz registers or replaces the bank of quizID.
func (c *StaticCatalog) AddQuiz(quizID uint, questions []Question) {
	c.mu.Lock()
	c.banks[quizID] = questions
	c.mu.Unlock()
}

type catalogFile struct {
	Quizzes []struct {
		ID        uint       `json:"id"`
		Questions []Question `json:"questions"`
	} `json:"quizzes"`
}

type catalogOption struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// UnmarshalJSON accepts is_correct on options, which AnswerOption hides
// from the wire when questions are sent to players.
func (q *Question) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID               uint            `json:"id"`
		Type             QuestionType    `json:"type"`
		Text             string          `json:"text"`
		TimeLimitSeconds int             `json:"time_limit_seconds"`
		Points           int             `json:"points"`
		Answers          []catalogOption `json:"answers"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*q = Question{
		ID:               raw.ID,
		Type:             raw.Type,
		Text:             raw.Text,
		TimeLimitSeconds: raw.TimeLimitSeconds,
		Points:           raw.Points,
		Answers:          make([]AnswerOption, len(raw.Answers)),
	}
	for i, a := range raw.Answers {
		q.Answers[i] = AnswerOption{ID: a.ID, Text: a.Text, IsCorrect: a.IsCorrect}
	}
	return nil
}

// LoadStaticCatalog reads {"quizzes":[{"id":1,"questions":[...]}]}.
func LoadStaticCatalog(r io.Reader) (*StaticCatalog, error) {
	var f catalogFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &StaticCatalog{
		banks:    make(map[uint][]Question),
		sessions: make(map[string]uint),
	}
	for _, quiz := range f.Quizzes {
		for _, q := range quiz.Questions {
			if q.Type != QuestionSingle && q.Type != QuestionMultiple {
				return nil, fmt.Errorf("quiz %d question %d: unknown type %q", quiz.ID, q.ID, q.Type)
			}
			if len(q.CorrectIDs()) == 0 {
				return nil, fmt.Errorf("quiz %d question %d: no correct answer", quiz.ID, q.ID)
			}
		}
		c.AddQuiz(quiz.ID, quiz.Questions)
	}
	return c, nil
}

func (c *StaticCatalog) Bind(_ context.Context, sessionCode string, settings Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.banks[settings.QuizID]; !ok {
		return fmt.Errorf("%w: quiz %d", ErrQuestionNotFound, settings.QuizID)
	}
	c.sessions[sessionCode] = settings.QuizID
	return nil
}

func (c *StaticCatalog) Release(sessionCode string) {
	c.mu.Lock()
	delete(c.sessions, sessionCode)
	c.mu.Unlock()
}

func (c *StaticCatalog) NextQuestion(ctx context.Context, sessionCode string, roundIndex int) (Question, error) {
	if err := ctx.Err(); err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrCatalog, err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	bank := c.banks[c.sessions[sessionCode]]
	if roundIndex < 1 || roundIndex > len(bank) {
		return Question{}, ErrQuestionNotFound
	}
	return bank[roundIndex-1], nil
}
