package entity

import "time"

// Message is one persisted chat exchange: the user's message and the model's
// full response. Records are immutable after creation; the store assigns
// ID and Timestamp on insert.
type Message struct {
	ID          uint      `json:"id"`
	UserID      int64     `json:"user_id"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	Timestamp   time.Time `json:"timestamp"`
}
