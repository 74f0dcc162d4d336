package models

import "time"

// MessageModel is the gorm row for one chat exchange.
type MessageModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	UserID      int64     `gorm:"index;not null"`
	UserMessage string    `gorm:"type:text;not null"`
	AIResponse  string    `gorm:"type:text;not null"`
	Timestamp   time.Time `gorm:"autoCreateTime;index"`
}

// TableName pins the table name.
func (MessageModel) TableName() string {
	return "messages"
}
