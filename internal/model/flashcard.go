package model

import "time"

// UnknownSourceFilename is stored on flashcards whose source tag did not
// resolve to a retrieved chunk.
const UnknownSourceFilename = "unknown"

type Flashcard struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  *uint     `gorm:"index" json:"session_id,omitempty"`
	Session    *Session  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Filename   string    `gorm:"size:512;not null" json:"filename"`
	ChunkIndex *int      `json:"chunk_index,omitempty"`
	Question   string    `gorm:"type:text;not null" json:"question"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	CreatedAt  time.Time `json:"created_at"`
}
