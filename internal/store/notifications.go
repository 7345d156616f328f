package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"schichtbuch-backend/internal/mention"
	"schichtbuch-backend/internal/model"
)

const snippetMaxRunes = 200

// createMentions scans text for @-mentions, resolves them against known
// usernames and creates one notification per resolved user. Unresolved
// tokens are skipped silently, as is the acting user.
func (s *gormStore) createMentions(tx *gorm.DB, actor *model.User, entryID int64, source model.MentionSource, text string) ([]model.MentionNotification, error) {
	names := mention.Extract(text)
	if len(names) == 0 {
		return nil, nil
	}

	var users []model.User
	if err := tx.Where("username IN ?", names).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve mentioned users: %w", err)
	}

	snippet := mention.Snippet(text, snippetMaxRunes)
	var created []model.MentionNotification
	for _, u := range users {
		if u.ID == actor.ID {
			continue
		}
		n := model.MentionNotification{
			UserID:      u.ID,
			EntryID:     entryID,
			CreatedByID: &actor.ID,
			Source:      source,
			TextSnippet: snippet,
		}
		if err := tx.Create(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to create mention notification for %s: %w", u.Username, err)
		}
		created = append(created, n)
	}
	return created, nil
}

// ListNotifications returns the user's mention notifications, newest first.
// With markRead set, all of the user's unread notifications are flipped to
// read in one batch; the returned rows still carry the state the user saw.
func (s *gormStore) ListNotifications(ctx context.Context, userID int64, markRead bool) ([]model.MentionNotification, error) {
	var notifications []model.MentionNotification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	if markRead {
		err := s.db.WithContext(ctx).
			Model(&model.MentionNotification{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Update("is_read", true).Error
		if err != nil {
			return nil, fmt.Errorf("failed to mark notifications read: %w", err)
		}
	}
	return notifications, nil
}

// UnreadNotificationCount backs the header badge.
func (s *gormStore) UnreadNotificationCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.MentionNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
