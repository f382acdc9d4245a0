package repository_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/muzz-matching/internal/db"
)

// fixedToday is "today" for every repository test.
var fixedToday = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedToday }

// setup in-memory DB, one isolated database per test
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:  logger.Discard,
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedUser inserts a user; the username doubles as a readable label in assertions.
func seedUser(t *testing.T, gdb *gorm.DB, id uint64, gender string, dob time.Time, lastActive time.Time) db.User {
	t.Helper()
	u := db.User{
		ID:           id,
		Username:     fmt.Sprintf("user%d", id),
		Email:        fmt.Sprintf("u%d@test.com", id),
		PasswordHash: "x",
		Gender:       gender,
		DateOfBirth:  dob,
		CreatedAt:    fixedToday.Add(-time.Duration(id) * time.Hour),
		LastActive:   lastActive,
	}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func userIDs(users []db.User) []uint64 {
	ids := make([]uint64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func messageIDs(msgs []db.Message) []uint64 {
	ids := make([]uint64, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	return ids
}
