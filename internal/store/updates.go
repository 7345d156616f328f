package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"schichtbuch-backend/internal/model"
)

// AppendUpdate validates and records a follow-up on an existing entry. It
// captures the status transition, appends an immutable history row, runs the
// spare-part reconciliation when usage was submitted, and scans the comment
// for @-mentions. Prior update rows are never touched.
func (s *gormStore) AppendUpdate(ctx context.Context, user *model.User, entryID int64, in EntryUpdateInput, images, videos []MediaFile) (*model.ShiftEntryUpdate, []model.MentionNotification, error) {
	verr := NewValidationError()

	if strings.TrimSpace(in.Comment) == "" {
		verr.Add("comment", "Bitte einen Kommentar eingeben.")
	}
	if in.ActionTime.IsZero() {
		verr.Add("action_time", "Bitte den Zeitpunkt der Maßnahme angeben.")
	} else if in.ActionTime.After(time.Now()) {
		verr.Add("action_time", "Der Zeitpunkt darf nicht in der Zukunft liegen.")
	}
	if in.NewStatus != nil && !model.ValidStatus(*in.NewStatus) {
		verr.Add("status", "Unbekannter Status.")
	}
	if in.SparePart != nil {
		if in.SparePart.QuantityUsed < 0 {
			verr.Add("quantity_used", "Anzahl darf nicht negativ sein.")
		}
		if in.SparePart.QuantityRemaining != nil && *in.SparePart.QuantityRemaining < 0 {
			verr.Add("quantity_remaining", "Bestand darf nicht negativ sein.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, nil, err
	}

	var entry model.ShiftEntry
	if err := s.db.WithContext(ctx).First(&entry, entryID).Error; err != nil {
		return nil, nil, err
	}

	update := model.ShiftEntryUpdate{
		EntryID:      entry.ID,
		UserID:       user.ID,
		Comment:      in.Comment,
		ActionTime:   in.ActionTime,
		StatusBefore: entry.Status,
		StatusAfter:  entry.Status,
	}
	if in.NewStatus != nil {
		update.StatusAfter = *in.NewStatus
	}

	now := time.Now()
	var mentions []model.MentionNotification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.NewStatus != nil && *in.NewStatus != entry.Status {
			if err := tx.Model(&entry).Update("status", *in.NewStatus).Error; err != nil {
				return fmt.Errorf("failed to change entry status: %w", err)
			}
		}

		if err := tx.Create(&update).Error; err != nil {
			return fmt.Errorf("failed to create update: %w", err)
		}

		for _, img := range images {
			row := model.ShiftEntryImage{EntryID: entry.ID, Path: img.Path, Comment: img.Comment, UploadedAt: now}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to attach image: %w", err)
			}
		}
		for _, vid := range videos {
			row := model.ShiftEntryVideo{EntryID: entry.ID, Path: vid.Path, Comment: vid.Comment, UploadedAt: now}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to attach video: %w", err)
			}
		}

		if err := s.reconcileSparePart(tx, &entry, in.SparePart, user.ID); err != nil {
			return err
		}

		var err error
		mentions, err = s.createMentions(tx, user, entry.ID, model.MentionSourceUpdate, in.Comment)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return &update, mentions, nil
}
