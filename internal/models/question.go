package models

type Question struct {
	ID               uint     `gorm:"primaryKey" json:"id"`
	QuizID           uint     `gorm:"not null;index" json:"quiz_id"`
	Text             string   `gorm:"type:text;not null" json:"text"`
	Type             string   `gorm:"size:10;not null;default:'single'" json:"type"`
	Points           int      `gorm:"not null;default:100" json:"points"`
	TimeLimitSeconds int      `gorm:"not null;default:30" json:"time_limit_seconds"`
	OrderNum         int      `gorm:"not null" json:"order_num"`
	Options          []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

const (
	QuestionTypeSingle   = "single"
	QuestionTypeMultiple = "multiple"
)
