package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BattleSession is the audit row of one battle, upserted on every lifecycle
// change by its code.
type BattleSession struct {
	ID                     uint                `gorm:"primaryKey" json:"id"`
	Code                   string              `gorm:"size:6;uniqueIndex;not null" json:"code"`
	HostID                 uint                `gorm:"not null;index" json:"host_id"`
	QuizID                 uint                `gorm:"not null;default:0" json:"quiz_id"`
	Title                  string              `gorm:"size:255;not null" json:"title"`
	State                  string              `gorm:"size:20;not null;default:'waiting'" json:"state"`
	MaxParticipants        int                 `gorm:"not null" json:"max_participants"`
	EliminationRatePercent int                 `gorm:"not null" json:"elimination_rate_percent"`
	TimePerQuestionSeconds int                 `gorm:"not null" json:"time_per_question_seconds"`
	TotalQuestions         int                 `gorm:"not null" json:"total_questions"`
	PrizePool              *decimal.Decimal    `gorm:"type:numeric(14,2)" json:"prize_pool,omitempty"`
	CurrentRound           int                 `gorm:"not null;default:0" json:"current_round"`
	CompletedEarly         bool                `gorm:"not null;default:false" json:"completed_early"`
	EndReason              string              `gorm:"size:40" json:"end_reason,omitempty"`
	Participants           []BattleParticipant `gorm:"foreignKey:SessionID" json:"participants,omitempty"`
	Rounds                 []BattleRound       `gorm:"foreignKey:SessionID" json:"rounds,omitempty"`
	CreatedAt              time.Time           `json:"created_at"`
	CompletedAt            *time.Time          `json:"completed_at,omitempty"`
}
