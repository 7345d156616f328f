package model

import "time"

// MentionSource identifies where a mention was written.
type MentionSource string

const (
	MentionSourceEntry  MentionSource = "ENTRY"
	MentionSourceUpdate MentionSource = "UPDATE"
)

// MentionNotification is created when a user is mentioned with @username in
// an entry or an update. It is only ever mutated to flip the read flag.
type MentionNotification struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	UserID      int64         `gorm:"not null;index" json:"user_id"`
	EntryID     int64         `gorm:"not null;index" json:"entry_id"`
	CreatedByID *int64        `json:"created_by,omitempty"`
	Source      MentionSource `gorm:"size:10;not null;default:ENTRY" json:"source"`
	TextSnippet string        `gorm:"size:255" json:"text_snippet"`
	IsRead      bool          `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`

	// Associations
	User  User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Entry ShiftEntry `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
