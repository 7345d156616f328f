package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"schichtbuch-backend/internal/model"
)

// ToggleLike adds the user's like on the entry, or removes it when it
// already exists. Returns whether the entry is liked afterwards.
func (s *gormStore) ToggleLike(ctx context.Context, entryID, userID int64) (bool, error) {
	var existing model.Like
	err := s.db.WithContext(ctx).
		Where("entry_id = ? AND user_id = ?", entryID, userID).
		First(&existing).Error

	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return true, fmt.Errorf("failed to remove like: %w", err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := model.Like{EntryID: entryID, UserID: userID}
		if err := s.db.WithContext(ctx).Create(&like).Error; err != nil {
			return false, fmt.Errorf("failed to create like: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("failed to look up like: %w", err)
	}
}
