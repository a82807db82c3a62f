package model

import "time"

// Chunk is one embedded span of a document. SessionID, Filename and
// ContentType are copied from the parent document so scoped queries and
// result attribution never need a join.
type Chunk struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DocumentID  uint      `gorm:"not null;index" json:"document_id"`
	Document    *Document `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SessionID   uint      `gorm:"not null;index" json:"session_id"`
	Session     *Session  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Filename    string    `gorm:"size:512;not null" json:"filename"`
	ContentType string    `gorm:"size:255" json:"content_type"`
	ChunkIndex  int       `gorm:"not null" json:"chunk_index"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Embedding   Embedding `gorm:"not null;dim:384" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
