package model

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is immutable once written: two rows per successful turn, one
// per sender. Within a chat messages are ordered by SentAt ascending,
// with ID breaking ties.
type Message struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	ChatID  uint      `gorm:"not null;index" json:"chat_id"`
	Content string    `gorm:"type:text;not null" json:"content"`
	Sender  Sender    `gorm:"size:16;not null" json:"sender"`
	SentAt  time.Time `gorm:"autoCreateTime;index" json:"sent_at"`
}
