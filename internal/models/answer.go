package models

type BattleAnswer struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	RoundID          uint   `gorm:"not null;uniqueIndex:idx_battle_answer" json:"round_id"`
	ParticipantUID   string `gorm:"size:36;not null;uniqueIndex:idx_battle_answer" json:"participant_id"`
	AnswerIDs        []uint `gorm:"serializer:json" json:"answer_ids"`
	Answered         bool   `gorm:"not null" json:"answered"`
	IsCorrect        bool   `gorm:"not null" json:"is_correct"`
	Points           int    `gorm:"not null;default:0" json:"points"`
	ResponseTimeMS   int64  `gorm:"not null;default:0" json:"response_time_ms"`
	ClientResponseMS int64  `gorm:"not null;default:0" json:"client_response_time_ms"`
}
