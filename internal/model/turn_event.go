package model

import "time"

// TurnEvent is an audit record for one completed chat turn. Events are
// published to the broker by the orchestrator and persisted by the
// turn-event worker; losing one never fails the turn itself.
type TurnEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChatID     uint      `gorm:"not null;index" json:"chat_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Provider   string    `gorm:"size:32;not null" json:"provider"`
	Outcome    string    `gorm:"size:16;not null" json:"outcome"`
	PromptLen  int       `json:"prompt_len"`
	ReplyLen   int       `json:"reply_len"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	TurnOutcomeOK       = "ok"
	TurnOutcomeDegraded = "degraded"
)
