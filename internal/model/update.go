package model

import "time"

// ShiftEntryUpdate is a follow-up record on an entry. Updates form the
// append-only history of an entry: they are never edited or removed, and are
// ordered by action time, then id.
type ShiftEntryUpdate struct {
	ID      int64 `gorm:"primaryKey" json:"id"`
	EntryID int64 `gorm:"not null;index" json:"entry_id"`
	UserID  int64 `gorm:"not null;index" json:"user_id"`

	Comment    string    `gorm:"type:text;not null" json:"comment"`
	ActionTime time.Time `gorm:"not null;index" json:"action_time"`

	StatusBefore Status `gorm:"size:10" json:"status_before"`
	StatusAfter  Status `gorm:"size:10" json:"status_after"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	// Associations
	Entry ShiftEntry `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User  User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
