package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"schichtbuch-backend/internal/db"
	"schichtbuch-backend/internal/logger"
	"schichtbuch-backend/internal/model"
)

// newTestStore opens a fresh in-memory SQLite database, runs the migrations
// and returns a store on top of it.
func newTestStore(t *testing.T) (Store, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	require.NoError(t, db.Migrate(gormDB))
	return NewGormStore(gormDB, logger.NewNop()), gormDB
}

func seedUser(t *testing.T, s Store, username string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedMachine(t *testing.T, s Store, name string) *model.Machine {
	t.Helper()
	machine := &model.Machine{Name: name, Location: "Halle 2", IsActive: true}
	require.NoError(t, s.CreateMachine(context.Background(), machine))
	return machine
}

func seedEntry(t *testing.T, s Store, user *model.User, machine *model.Machine) *model.ShiftEntry {
	t.Helper()
	entry, _, err := s.CreateEntry(context.Background(), user, NewEntryInput{
		Date:      time.Now().AddDate(0, 0, -1),
		Shift:     model.ShiftMorning,
		MachineID: machine.ID,
		Category:  model.CategoryFault,
		Title:     "Pumpe defekt",
	}, nil, nil)
	require.NoError(t, err)
	return entry
}

func intPtr(n int) *int { return &n }
