package battle

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventParticipantJoined       = "participant_joined"
	EventSessionStarted          = "session_started"
	EventEliminationRoundStarted = "elimination_round_started"
	EventNextQuestion            = "next_question"
	EventAnswerReceived          = "answer_received"
	EventParticipantEliminated   = "participant_eliminated"
	EventRoundSummary            = "round_summary"
	EventSessionEnded            = "session_ended"
	EventCurrentState            = "current_state"
)

// Event is one message on a session's channel. Seq increases by one per
// event within a session.
type Event struct {
	Type        string    `json:"type"`
	SessionCode string    `json:"session_code"`
	Seq         uint64    `json:"seq"`
	At          time.Time `json:"at"`
	Data        any       `json:"data"`
}

// Publisher delivers session events to subscribers. Publish must not block
// on slow subscribers.
type Publisher interface {
	Publish(sessionCode string, ev Event)
}

// QuizCatalog supplies the question of each round.
type QuizCatalog interface {
	NextQuestion(ctx context.Context, sessionCode string, roundIndex int) (Question, error)
}

// CatalogBinder is implemented by catalogs that need to know which quiz a
// session plays before its first round.
type CatalogBinder interface {
	Bind(ctx context.Context, sessionCode string, settings Settings) error
	Release(sessionCode string)
}

// AuditSink receives append-only records. Implementations must not block
// gameplay.
type AuditSink interface {
	RecordSession(rec SessionRecord)
	RecordRound(rec RoundRecord)
}

type SessionRecord struct {
	Code           string        `json:"code"`
	HostID         uint          `json:"host_id"`
	Settings       Settings      `json:"settings"`
	State          SessionState  `json:"state"`
	CurrentRound   int           `json:"current_round"`
	CompletedEarly bool          `json:"completed_early"`
	EndReason      string        `json:"end_reason,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	Participants   []Participant `json:"participants,omitempty"`
}

type RoundRecord struct {
	SessionCode string                `json:"session_code"`
	Round       int                   `json:"round"`
	QuestionID  uint                  `json:"question_id"`
	StartedAt   time.Time             `json:"started_at"`
	ClosedAt    time.Time             `json:"closed_at"`
	CloseReason CloseReason           `json:"close_reason"`
	Answers     map[string]Submission `json:"answers"`
	Results     []ParticipantResult   `json:"results"`
	Eliminated  []string              `json:"eliminated"`
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, Event) {}

type nopAudit struct{}

func (nopAudit) RecordSession(SessionRecord) {}
func (nopAudit) RecordRound(RoundRecord)     {}

// Event payloads.

type JoinedEvent struct {
	Participant Participant `json:"participant"`
	Count       int         `json:"count"`
}

type RoundStartedEvent struct {
	Round            int       `json:"round"`
	CountdownSeconds int       `json:"countdown_seconds"`
	StartedAt        time.Time `json:"started_at"`
	Deadline         time.Time `json:"deadline"`
}

type NextQuestionEvent struct {
	Round          int          `json:"round"`
	TotalQuestions int          `json:"total_questions"`
	Question       QuestionView `json:"question"`
	StartedAt      time.Time    `json:"started_at"`
	Deadline       time.Time    `json:"deadline"`
}

type AnswerReceivedEvent struct {
	Round    int `json:"round"`
	Answered int `json:"answered"`
	Active   int `json:"active"`
}

type EliminatedEvent struct {
	ParticipantID string `json:"participant_id"`
	Pseudo        string `json:"pseudo"`
	Round         int    `json:"round"`
	Score         int    `json:"score"`
}

type RoundSummaryEvent struct {
	Round       int                 `json:"round"`
	CloseReason CloseReason         `json:"close_reason"`
	CorrectIDs  []uint              `json:"correct_answer_ids"`
	Results     []ParticipantResult `json:"results"`
	Eliminated  []string            `json:"eliminated"`
	Remaining   int                 `json:"remaining"`
	Standings   []Participant       `json:"standings"`
}

type SessionEndedEvent struct {
	CompletedEarly bool                `json:"completed_early"`
	Reason         string              `json:"reason"`
	Rounds         int                 `json:"rounds"`
	Ranked         []RankedParticipant `json:"ranked_participants"`
	PrizePool      *decimal.Decimal    `json:"prize_pool,omitempty"`
}

// QuestionView is a question as shown to players, without correctness.
type QuestionView struct {
	ID               uint         `json:"id"`
	Type             QuestionType `json:"type"`
	Text             string       `json:"text"`
	TimeLimitSeconds int          `json:"time_limit_seconds"`
	Points           int          `json:"points"`
	Answers          []OptionView `json:"answers"`
}

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

func viewQuestion(q Question) QuestionView {
	v := QuestionView{
		ID:               q.ID,
		Type:             q.Type,
		Text:             q.Text,
		TimeLimitSeconds: q.TimeLimitSeconds,
		Points:           q.Points,
		Answers:          make([]OptionView, len(q.Answers)),
	}
	for i, a := range q.Answers {
		v.Answers[i] = OptionView{ID: a.ID, Text: a.Text}
	}
	return v
}
