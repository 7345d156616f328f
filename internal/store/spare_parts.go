package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"schichtbuch-backend/internal/model"
)

// reconcileSparePart merges submitted spare-part usage into the entry's
// structured SparePart rows, keyed by SAP number:
//   - quantity_used accumulates across submissions,
//   - quantity_remaining is overwritten when supplied (last write wins),
//   - description is only set when it was empty (first write wins).
//
// Any recorded consumption resets the entry's processed flag, since new
// consumption invalidates a prior SAP booking confirmation. A submission
// without the used flag, or with an empty SAP number, changes nothing.
func (s *gormStore) reconcileSparePart(tx *gorm.DB, entry *model.ShiftEntry, usage *SparePartUsage, userID int64) error {
	if usage == nil || !usage.Used {
		return nil
	}
	sap := strings.TrimSpace(usage.SAPNumber)
	if sap == "" {
		return nil
	}

	var part model.SparePart
	err := tx.Where("entry_id = ? AND sap_number = ?", entry.ID, sap).First(&part).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"quantity_used": gorm.Expr("quantity_used + ?", usage.QuantityUsed),
		}
		if usage.QuantityRemaining != nil {
			updates["quantity_remaining"] = *usage.QuantityRemaining
		}
		if part.Description == "" && usage.Description != "" {
			updates["description"] = usage.Description
		}
		if err := tx.Model(&part).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to merge spare part %s: %w", sap, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		part = model.SparePart{
			EntryID:      entry.ID,
			SAPNumber:    sap,
			Description:  usage.Description,
			QuantityUsed: usage.QuantityUsed,
			CreatedByID:  &userID,
		}
		if usage.QuantityRemaining != nil {
			part.QuantityRemaining = *usage.QuantityRemaining
		}
		if err := tx.Create(&part).Error; err != nil {
			return fmt.Errorf("failed to create spare part %s: %w", sap, err)
		}
	default:
		return fmt.Errorf("failed to look up spare part %s: %w", sap, err)
	}

	// New consumption invalidates a prior booking confirmation.
	err = tx.Model(entry).Updates(map[string]interface{}{
		"used_spare_parts":         true,
		"spare_parts_processed":    false,
		"spare_parts_processed_by": nil,
		"spare_parts_processed_at": nil,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to reset processed flag on entry %d: %w", entry.ID, err)
	}
	return nil
}

// ToggleSparePartsProcessed flips the SAP booking confirmation on an entry.
// The capability check happens in the handler; here the toggle is a no-op
// when the entry has no recorded spare-part usage at all. Returns the entry
// and whether anything changed.
func (s *gormStore) ToggleSparePartsProcessed(ctx context.Context, actor *model.User, entryID int64) (*model.ShiftEntry, bool, error) {
	var entry model.ShiftEntry
	if err := s.db.WithContext(ctx).Preload("SpareParts").First(&entry, entryID).Error; err != nil {
		return nil, false, err
	}

	if !entry.UsedSpareParts && len(entry.SpareParts) == 0 {
		return &entry, false, nil
	}

	var updates map[string]interface{}
	if entry.SparePartsProcessed {
		updates = map[string]interface{}{
			"spare_parts_processed":    false,
			"spare_parts_processed_by": nil,
			"spare_parts_processed_at": nil,
		}
	} else {
		now := time.Now()
		updates = map[string]interface{}{
			"spare_parts_processed":    true,
			"spare_parts_processed_by": actor.ID,
			"spare_parts_processed_at": now,
		}
	}

	if err := s.db.WithContext(ctx).Model(&entry).Updates(updates).Error; err != nil {
		return nil, false, fmt.Errorf("failed to toggle processed flag on entry %d: %w", entryID, err)
	}
	return &entry, true, nil
}
