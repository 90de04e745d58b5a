package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pollroom/server/pkg/internal/database"
	"github.com/pollroom/server/pkg/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testPollSeq int

// setupTestDB points the global database handle at a fresh in-memory
// sqlite instance. The pool is capped at a single connection so concurrent
// test goroutines contend on the store's constraints instead of tripping
// over sqlite's writer lock.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigration(db))
	database.C = db
}

func createTestAccount(t *testing.T, name string) models.Account {
	t.Helper()

	now := time.Now()
	account := models.Account{
		ProviderUID:     "uid-" + name,
		Name:            name,
		Email:           name + "@example.com",
		Role:            models.AccountRoleUser,
		EmailVerifiedAt: &now,
	}
	require.NoError(t, database.C.Create(&account).Error)
	return account
}

func createTestPoll(t *testing.T, creator models.Account, optionCount int) models.Poll {
	t.Helper()

	testPollSeq++
	poll := models.Poll{
		Title:     fmt.Sprintf("Test Poll %d", testPollSeq),
		IsPublic:  true,
		CreatorID: creator.ID,
	}
	for idx := 0; idx < optionCount; idx++ {
		poll.Options = append(poll.Options, models.PollOption{
			Idx:  idx,
			Text: fmt.Sprintf("Option %d", idx+1),
		})
	}

	poll, err := NewPoll(poll)
	require.NoError(t, err)
	return poll
}

func backdatePoll(t *testing.T, poll models.Poll, createdAt time.Time) {
	t.Helper()

	require.NoError(t, database.C.Model(&models.Poll{}).
		Where("id = ?", poll.ID).
		UpdateColumn("created_at", createdAt).Error)
}

func seedVotes(t *testing.T, poll models.Poll, optionIdx int, count int64) {
	t.Helper()

	require.NoError(t, database.C.Model(&models.PollOption{}).
		Where("poll_id = ? AND idx = ?", poll.ID, optionIdx).
		UpdateColumn("votes", gorm.Expr("votes + ?", count)).Error)
}
