package model

import "time"

type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   uint      `gorm:"not null;index" json:"session_id"`
	Session     *Session  `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
	Filename    string    `gorm:"size:512;not null" json:"filename"`
	ContentType string    `gorm:"size:255" json:"content_type"`
	Content     []byte    `json:"-"`
	Size        int64     `gorm:"not null;default:0" json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
