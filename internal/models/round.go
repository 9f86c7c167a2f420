package models

import "time"

type BattleRound struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SessionID   uint           `gorm:"not null;uniqueIndex:idx_battle_round" json:"session_id"`
	Round       int            `gorm:"not null;uniqueIndex:idx_battle_round" json:"round"`
	QuestionID  uint           `gorm:"not null" json:"question_id"`
	CloseReason string         `gorm:"size:20;not null" json:"close_reason"`
	Eliminated  []string       `gorm:"serializer:json" json:"eliminated"`
	Answers     []BattleAnswer `gorm:"foreignKey:RoundID" json:"answers,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	ClosedAt    time.Time      `json:"closed_at"`
}
