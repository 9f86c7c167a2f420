package battle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type SessionState string

const (
	StateWaiting   SessionState = "waiting"
	StateActive    SessionState = "active"
	StateCompleted SessionState = "completed"
)

type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
)

// MinParticipants is the smallest field a battle can start with.
const MinParticipants = 4

const maxPseudoLen = 100

type AnswerOption struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"-"`
}

type Question struct {
	ID               uint           `json:"id"`
	Type             QuestionType   `json:"type"`
	Text             string         `json:"text"`
	TimeLimitSeconds int            `json:"time_limit_seconds"`
	Points           int            `json:"points"`
	Answers          []AnswerOption `json:"answers"`
}

// CorrectIDs returns the ids of the correct options in catalog order.
func (q Question) CorrectIDs() []uint {
	var ids []uint
	for _, a := range q.Answers {
		if a.IsCorrect {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func (q Question) hasOption(id uint) bool {
	for _, a := range q.Answers {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (q Question) validateSelection(ids []uint) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no answer selected", ErrInvalidAnswer)
	}
	if q.Type == QuestionSingle && len(ids) != 1 {
		return fmt.Errorf("%w: single choice question takes exactly one answer", ErrInvalidAnswer)
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if !q.hasOption(id) {
			return fmt.Errorf("%w: unknown answer id %d", ErrInvalidAnswer, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: answer id %d selected twice", ErrInvalidAnswer, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Settings is the host supplied configuration of a battle.
type Settings struct {
	Title                  string           `json:"title"`
	QuizID                 uint             `json:"quiz_id"`
	MaxParticipants        int              `json:"max_participants"`
	EliminationRatePercent int              `json:"elimination_rate_percent"`
	TimePerQuestionSeconds int              `json:"time_per_question_seconds"`
	TotalQuestions         int              `json:"total_questions"`
	PrizePool              *decimal.Decimal `json:"prize_pool,omitempty"`
}

func (s Settings) Validate() error {
	switch {
	case s.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidSettings)
	case s.MaxParticipants < MinParticipants:
		return fmt.Errorf("%w: max_participants must be at least %d", ErrInvalidSettings, MinParticipants)
	case s.EliminationRatePercent < 1 || s.EliminationRatePercent > 99:
		return fmt.Errorf("%w: elimination_rate_percent must be within 1..99", ErrInvalidSettings)
	case s.TimePerQuestionSeconds <= 0:
		return fmt.Errorf("%w: time_per_question_seconds must be positive", ErrInvalidSettings)
	case s.TotalQuestions <= 0:
		return fmt.Errorf("%w: total_questions must be positive", ErrInvalidSettings)
	case s.PrizePool != nil && s.PrizePool.IsNegative():
		return fmt.Errorf("%w: prize_pool cannot be negative", ErrInvalidSettings)
	}
	return nil
}

func (s Settings) roundDuration() time.Duration {
	return time.Duration(s.TimePerQuestionSeconds) * time.Second
}

// Participant is a read-only copy of one participant's state.
type Participant struct {
	ID              string    `json:"participant_id"`
	UserID          *uint     `json:"user_id,omitempty"`
	Pseudo          string    `json:"pseudo"`
	Avatar          *string   `json:"avatar,omitempty"`
	Score           int       `json:"score"`
	Streak          int       `json:"streak"`
	CorrectAnswers  int       `json:"correct_answers"`
	IsEliminated    bool      `json:"is_eliminated"`
	EliminatedRound *int      `json:"eliminated_round,omitempty"`
	LastResponseMS  int64     `json:"last_response_ms"`
	JoinedAt        time.Time `json:"joined_at"`
}

// Submission is one participant's answer for one round. ResponseTimeMS is
// measured by the server from the round start; the client's own figure is
// kept for analytics only.
type Submission struct {
	AnswerIDs        []uint `json:"answer_ids"`
	ResponseTimeMS   int64  `json:"response_time_ms"`
	ClientResponseMS int64  `json:"client_response_time_ms"`
}

type JoinRequest struct {
	Pseudo string
	Avatar *string
	UserID *uint
}

type AnswerRequest struct {
	ParticipantID    string
	Round            int
	AnswerIDs        []uint
	ClientResponseMS int64
}
