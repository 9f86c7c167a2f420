package models

import "time"

type BattleParticipant struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SessionID       uint      `gorm:"not null;uniqueIndex:idx_battle_participant" json:"session_id"`
	ParticipantUID  string    `gorm:"size:36;not null;uniqueIndex:idx_battle_participant" json:"participant_id"`
	UserID          *uint     `json:"user_id,omitempty"`
	Pseudo          string    `gorm:"size:100;not null" json:"pseudo"`
	Avatar          *string   `gorm:"size:255" json:"avatar,omitempty"`
	Score           int       `gorm:"not null;default:0" json:"score"`
	Streak          int       `gorm:"not null;default:0" json:"streak"`
	CorrectAnswers  int       `gorm:"not null;default:0" json:"correct_answers"`
	IsEliminated    bool      `gorm:"not null;default:false" json:"is_eliminated"`
	EliminatedRound *int      `json:"eliminated_round,omitempty"`
	FinalRank       int       `gorm:"not null;default:0" json:"final_rank"`
	JoinedAt        time.Time `json:"joined_at"`
}
