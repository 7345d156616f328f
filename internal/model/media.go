package model

import "time"

// ShiftEntryImage is an image file attached to an entry, e.g. a photo of the
// damage or of the rebuilt assembly.
type ShiftEntryImage struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	EntryID    int64     `gorm:"not null;index" json:"entry_id"`
	Path       string    `gorm:"size:255;not null" json:"path"` // relative to the media root
	Comment    string    `gorm:"size:200" json:"comment"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`

	// Associations
	Entry ShiftEntry `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ShiftEntryVideo is a video file attached to an entry.
type ShiftEntryVideo struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	EntryID    int64     `gorm:"not null;index" json:"entry_id"`
	Path       string    `gorm:"size:255;not null" json:"path"`
	Comment    string    `gorm:"size:200" json:"comment"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`

	// Associations
	Entry ShiftEntry `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
