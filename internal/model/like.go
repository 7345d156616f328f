package model

import "time"

// Like marks approval / relevance of an entry. A user can like an entry at
// most once; liking again removes the like.
type Like struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	EntryID   int64     `gorm:"not null;uniqueIndex:idx_likes_entry_user" json:"entry_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_likes_entry_user" json:"user_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	// Associations
	Entry ShiftEntry `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User  User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
