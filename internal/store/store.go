package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"schichtbuch-backend/internal/logger"
	"schichtbuch-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Users
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	EnsureAdminUser(ctx context.Context, username, passwordHash string) error

	// Machines
	ListMachines(ctx context.Context) ([]model.Machine, error)
	CreateMachine(ctx context.Context, machine *model.Machine) error

	// Entries
	CreateEntry(ctx context.Context, user *model.User, in NewEntryInput, images, videos []MediaFile) (*model.ShiftEntry, []model.MentionNotification, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]model.ShiftEntry, int64, error)
	GetEntry(ctx context.Context, id int64) (*model.ShiftEntry, error)
	LikeCount(ctx context.Context, entryID int64) (int64, error)
	DashboardStats(ctx context.Context, now time.Time) (*Dashboard, error)

	// Updates and spare parts
	AppendUpdate(ctx context.Context, user *model.User, entryID int64, in EntryUpdateInput, images, videos []MediaFile) (*model.ShiftEntryUpdate, []model.MentionNotification, error)
	HasUpdateBy(ctx context.Context, entryID, userID int64) (bool, error)
	ToggleSparePartsProcessed(ctx context.Context, actor *model.User, entryID int64) (*model.ShiftEntry, bool, error)

	// Likes
	ToggleLike(ctx context.Context, entryID, userID int64) (bool, error)

	// Mention notifications
	ListNotifications(ctx context.Context, userID int64, markRead bool) ([]model.MentionNotification, error)
	UnreadNotificationCount(ctx context.Context, userID int64) (int64, error)

	// Push subscriptions
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, userID int64, endpoint string) error
	SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, log *logger.Logger) Store {
	return &gormStore{db: db, log: log.With("component", "store")}
}

// DB exposes the underlying database handle for read-only handler queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
