package model

import "time"

// Chat is one conversation thread. Title stays empty until the first
// turn completes or the user renames it. UpdatedAt advances whenever a
// message is appended or the title changes.
type Chat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:128" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `gorm:"-" json:"messages,omitempty"`
}
