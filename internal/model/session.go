package model

import "time"

// Session scopes one study context: its documents, chunks and flashcards.
type Session struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TokenUsage int64     `gorm:"not null;default:0" json:"token_usage"`
	CreatedAt  time.Time `json:"created_at"`
}
