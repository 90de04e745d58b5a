package services

import (
	"errors"
	"time"

	"github.com/pollroom/server/pkg/internal/database"
	"github.com/pollroom/server/pkg/internal/models"
	"gorm.io/gorm"
)

// CheckVoted answers whether the identity already voted on the poll.
// The match is intentionally an OR across both identity fields: the token
// can be wiped by the voter, the fingerprint can collide across machines,
// so neither alone is treated as authoritative.
//
// This lookup is advisory only; the authoritative check is the unique
// constraint exercised inside CastVote.
func CheckVoted(pollID uint, voterToken, fingerprint string) (bool, *time.Time, error) {
	if len(voterToken) == 0 || len(fingerprint) == 0 {
		return false, nil, ErrIdentityRequired
	}

	var record models.VoteRecord
	err := database.C.
		Where("poll_id = ?", pollID).
		Where("voter_token = ? OR fingerprint = ?", voterToken, fingerprint).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}

	return true, &record.VotedAt, nil
}

// CastVote records one vote for the given option. The vote record insert and
// the counter increment commit or roll back together; the pair of composite
// unique indexes on the record table turns the duplicate check into a single
// atomic insert, so two concurrent votes from one identity cannot both land.
func CastVote(pollID uint, optionIdx int, voterToken, fingerprint string) (models.Poll, error) {
	if len(voterToken) == 0 || len(fingerprint) == 0 {
		return models.Poll{}, ErrIdentityRequired
	}

	poll, err := GetPoll(pollID)
	if err != nil {
		return poll, err
	}

	if poll.CurrentStatus(time.Now()) != models.PollStatusActive {
		return poll, ErrPollClosed
	}
	if optionIdx < 0 || optionIdx >= len(poll.Options) {
		return poll, ErrInvalidOption
	}

	err = database.C.Transaction(func(tx *gorm.DB) error {
		record := models.VoteRecord{
			PollID:      poll.ID,
			VoterToken:  voterToken,
			Fingerprint: fingerprint,
			VotedAt:     time.Now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyVoted
			}
			return err
		}

		// The increment happens inside the store, never as a read-modify-write
		// round trip, so concurrent votes for different identities compose.
		res := tx.Model(&models.PollOption{}).
			Where("poll_id = ? AND idx = ?", poll.ID, optionIdx).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidOption
		}

		return nil
	})
	if err != nil {
		return poll, err
	}

	poll, err = GetPoll(pollID)
	if err != nil {
		return poll, err
	}
	poll.Hydrate()

	return poll, nil
}

// ListVotedPolls returns the polls a voter token participated in, newest
// vote first. Only the token is consulted here: fingerprints collide across
// devices and would leak someone else's history.
func ListVotedPolls(voterToken string) ([]models.VoteRecord, error) {
	if len(voterToken) == 0 {
		return nil, ErrIdentityRequired
	}

	var records []models.VoteRecord
	if err := database.C.
		Preload("Poll", func(tx *gorm.DB) *gorm.DB {
			return tx.Preload("Creator")
		}).
		Where("voter_token = ?", voterToken).
		Order("voted_at DESC").
		Find(&records).Error; err != nil {
		return records, err
	}

	return records, nil
}

func CountVotes() (int64, error) {
	var count int64
	err := database.C.Model(&models.VoteRecord{}).Count(&count).Error
	return count, err
}
