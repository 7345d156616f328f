package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"schichtbuch-backend/internal/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateEntry validates and persists a new shift entry together with its
// media attachments, then scans title and description for @-mentions. The
// created mention notifications are returned for push fan-out.
func (s *gormStore) CreateEntry(ctx context.Context, user *model.User, in NewEntryInput, images, videos []MediaFile) (*model.ShiftEntry, []model.MentionNotification, error) {
	verr := NewValidationError()

	if in.Date.IsZero() {
		verr.Add("date", "Bitte ein Datum angeben.")
	}
	if !model.ValidShift(in.Shift) {
		verr.Add("shift", "Bitte eine gültige Schicht wählen.")
	}
	if !model.ValidCategory(in.Category) {
		verr.Add("category", "Bitte eine gültige Kategorie wählen.")
	}
	if strings.TrimSpace(in.Title) == "" {
		verr.Add("title", "Bitte einen Titel angeben.")
	}
	if in.MachineID <= 0 {
		verr.Add("machine", "Bitte eine Maschine wählen.")
	}
	if in.Priority == 0 {
		in.Priority = 2
	}
	if in.Priority < 1 || in.Priority > 3 {
		verr.Add("priority", "Priorität muss 1, 2 oder 3 sein.")
	}
	if in.Status == "" {
		in.Status = model.StatusOpen
	}
	if !model.ValidStatus(in.Status) {
		verr.Add("status", "Unbekannter Status.")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		verr.Add("duration_minutes", "Dauer darf nicht negativ sein.")
	}

	now := time.Now()
	if !in.Date.IsZero() && truncateToDay(in.Date).After(truncateToDay(now)) {
		verr.Add("date", "Das Ereignis darf nicht in der Zukunft liegen.")
	}
	if in.EventTime != nil && in.EventTime.After(now) {
		verr.Add("time", "Die Uhrzeit darf nicht in der Zukunft liegen.")
	}

	if in.MachineID > 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Machine{}).Where("id = ?", in.MachineID).Count(&count).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to check machine %d: %w", in.MachineID, err)
		}
		if count == 0 {
			verr.Add("machine", "Unbekannte Maschine.")
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, nil, err
	}

	entry := model.ShiftEntry{
		Date:            truncateToDay(in.Date),
		EventTime:       in.EventTime,
		Shift:           in.Shift,
		Category:        in.Category,
		UserID:          user.ID,
		MachineID:       in.MachineID,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		Priority:        in.Priority,
		Status:          in.Status,
	}

	var mentions []model.MentionNotification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
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

		text := entry.Title
		if entry.Description != "" {
			text += "\n" + entry.Description
		}
		var err error
		mentions, err = s.createMentions(tx, user, entry.ID, model.MentionSourceEntry, text)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return &entry, mentions, nil
}

// ListEntries returns one page of entries matching the filter, newest first,
// together with the total number of matches.
func (s *gormStore) ListEntries(ctx context.Context, filter EntryFilter) ([]model.ShiftEntry, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.ShiftEntry{})

	if filter.MachineID != nil {
		q = q.Where("machine_id = ?", *filter.MachineID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Shift != "" {
		q = q.Where("shift = ?", filter.Shift)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", truncateToDay(*filter.From))
	}
	if filter.To != nil {
		q = q.Where("date <= ?", truncateToDay(*filter.To))
	}
	if needle := strings.TrimSpace(filter.Query); needle != "" {
		like := "%" + needle + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var entries []model.ShiftEntry
	err := q.Preload("Machine").
		Order("date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, total, nil
}

// GetEntry loads one entry with all of its associations. Updates are ordered
// by action time, then id, which fixes the history order for good.
func (s *gormStore) GetEntry(ctx context.Context, id int64) (*model.ShiftEntry, error) {
	var entry model.ShiftEntry
	err := s.db.WithContext(ctx).
		Preload("Machine").
		Preload("Images").
		Preload("Videos").
		Preload("SpareParts").
		Preload("Updates", func(db *gorm.DB) *gorm.DB {
			return db.Order("action_time, id")
		}).
		First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *gormStore) LikeCount(ctx context.Context, entryID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).Where("entry_id = ?", entryID).Count(&count).Error
	return count, err
}

// HasUpdateBy reports whether the user has submitted at least one update to
// the entry. Part of the spare-part visibility rule.
func (s *gormStore) HasUpdateBy(ctx context.Context, entryID, userID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.ShiftEntryUpdate{}).
		Where("entry_id = ? AND user_id = ?", entryID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DashboardStats computes the counters for the overview page: entries today,
// entries since Monday, open and done counts, and the latest 20 entries.
func (s *gormStore) DashboardStats(ctx context.Context, now time.Time) (*Dashboard, error) {
	today := truncateToDay(now)
	weekStart := today.AddDate(0, 0, -int((now.Weekday()+6)%7)) // Monday

	var stats Dashboard
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.ShiftEntry{}).Where("date = ?", today).Count(&stats.EntriesToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's entries: %w", err)
	}
	if err := db.Model(&model.ShiftEntry{}).Where("date >= ? AND date <= ?", weekStart, today).Count(&stats.EntriesWeek).Error; err != nil {
		return nil, fmt.Errorf("failed to count this week's entries: %w", err)
	}
	if err := db.Model(&model.ShiftEntry{}).Where("status = ?", model.StatusOpen).Count(&stats.OpenEntries).Error; err != nil {
		return nil, fmt.Errorf("failed to count open entries: %w", err)
	}
	if err := db.Model(&model.ShiftEntry{}).Where("status = ?", model.StatusDone).Count(&stats.DoneEntries).Error; err != nil {
		return nil, fmt.Errorf("failed to count done entries: %w", err)
	}

	err := db.Preload("Machine").
		Order("date DESC, created_at DESC").
		Limit(20).
		Find(&stats.Latest).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load latest entries: %w", err)
	}
	return &stats, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
