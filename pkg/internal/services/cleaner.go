package services

import (
	"time"

	"github.com/pollroom/server/pkg/internal/database"
	"github.com/pollroom/server/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	unverifiedAccountTTL = 14 * 24 * time.Hour
	deletedPollRetention = 30 * 24 * time.Hour
)

// DoAutoDatabaseCleanup runs from the scheduler and keeps the store tidy:
// accounts that never verified their email age out, soft-deleted polls are
// eventually purged for real, and vote records whose poll is gone follow it.
func DoAutoDatabaseCleanup() {
	log.Debug().Msg("Now cleaning up entire database...")

	now := time.Now()

	// Hard delete: a lingering tombstone would keep holding the provider uid
	// and block the same identity from ever registering again.
	res := database.C.Unscoped().
		Where("email_verified_at IS NULL AND created_at < ?", now.Add(-unverifiedAccountTTL)).
		Delete(&models.Account{})
	if res.Error != nil {
		log.Error().Err(res.Error).Msg("An error occurred when cleaning unverified accounts...")
	} else if res.RowsAffected > 0 {
		log.Info().Int64("count", res.RowsAffected).Msg("Cleaned up unverified accounts.")
	}

	// Vote records of soft-deleted (or fully purged) polls.
	res = database.C.Unscoped().
		Where("poll_id NOT IN (SELECT id FROM polls WHERE deleted_at IS NULL)").
		Delete(&models.VoteRecord{})
	if res.Error != nil {
		log.Error().Err(res.Error).Msg("An error occurred when cleaning orphan vote records...")
	} else if res.RowsAffected > 0 {
		log.Info().Int64("count", res.RowsAffected).Msg("Cleaned up orphan vote records.")
	}

	deadline := now.Add(-deletedPollRetention)

	res = database.C.Unscoped().
		Where("poll_id IN (SELECT id FROM polls WHERE deleted_at IS NOT NULL AND deleted_at < ?)", deadline).
		Delete(&models.PollOption{})
	if res.Error != nil {
		log.Error().Err(res.Error).Msg("An error occurred when purging options of deleted polls...")
	}

	res = database.C.Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", deadline).
		Delete(&models.Poll{})
	if res.Error != nil {
		log.Error().Err(res.Error).Msg("An error occurred when purging deleted polls...")
	} else if res.RowsAffected > 0 {
		log.Info().Int64("count", res.RowsAffected).Msg("Purged soft-deleted polls.")
	}
}
