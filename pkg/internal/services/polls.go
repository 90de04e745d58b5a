package services

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/pollroom/server/pkg/internal/database"
	"github.com/pollroom/server/pkg/internal/models"
	"gorm.io/gorm"
)

const roomCodeAttempts = 5

// RandomRoomCode rolls an 8-digit share code. Collisions are expected to be
// rare at this keyspace but are still handled by the caller re-rolling.
func RandomRoomCode() string {
	return fmt.Sprintf("%08d", 10000000+rand.IntN(90000000))
}

// NewPoll persists a poll together with its options, allocating a unique
// room code. When the generated code collides with an existing poll the
// create is retried with a fresh code a bounded number of times.
func NewPoll(poll models.Poll) (models.Poll, error) {
	for attempt := 0; attempt < roomCodeAttempts; attempt++ {
		poll.RoomCode = RandomRoomCode()

		err := database.C.Create(&poll).Error
		if err == nil {
			return poll, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return poll, err
		}

		// The failed insert may have assigned primary keys already.
		poll.ID = 0
		for idx := range poll.Options {
			poll.Options[idx].ID = 0
			poll.Options[idx].PollID = 0
		}
	}

	return poll, ErrRoomCodeExhausted
}

func GetPoll(id uint) (models.Poll, error) {
	var poll models.Poll
	if err := database.C.
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("idx ASC")
		}).
		Where("id = ?", id).First(&poll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll, ErrPollNotFound
		}
		return poll, err
	}
	return poll, nil
}

func GetPollWithCreator(id uint) (models.Poll, error) {
	var poll models.Poll
	if err := database.C.
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("idx ASC")
		}).
		Preload("Creator").
		Where("id = ?", id).First(&poll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll, ErrPollNotFound
		}
		return poll, err
	}
	return poll, nil
}

func GetPollByRoomCode(code string) (models.Poll, error) {
	var poll models.Poll
	if err := database.C.
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("idx ASC")
		}).
		Preload("Creator").
		Where("room_code = ?", code).First(&poll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll, ErrPollNotFound
		}
		return poll, err
	}
	return poll, nil
}

func ListPolls(take int, offset int) ([]models.Poll, error) {
	var polls []models.Poll
	if err := database.C.
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("idx ASC")
		}).
		Preload("Creator").
		Where("is_public = ?", true).
		Order("created_at DESC").
		Offset(offset).Limit(take).
		Find(&polls).Error; err != nil {
		return polls, err
	}
	for idx := range polls {
		polls[idx].Hydrate()
	}
	return polls, nil
}

func ListPollsWithAccount(accountID uint) ([]models.Poll, error) {
	var polls []models.Poll
	if err := database.C.
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("idx ASC")
		}).
		Where("creator_id = ?", accountID).
		Order("created_at DESC").
		Find(&polls).Error; err != nil {
		return polls, err
	}
	for idx := range polls {
		polls[idx].Hydrate()
	}
	return polls, nil
}

func SearchPolls(probe string, take int) ([]models.Poll, error) {
	probe = "%" + probe + "%"

	var polls []models.Poll
	if err := database.C.
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("idx ASC")
		}).
		Preload("Creator").
		Where("is_public = ?", true).
		Where("LOWER(title) LIKE LOWER(?)", probe).
		Limit(take).
		Find(&polls).Error; err != nil {
		return polls, err
	}
	for idx := range polls {
		polls[idx].Hydrate()
	}
	return polls, nil
}

// UpdatePoll rewrites poll metadata and its option list. Vote counters of
// options that keep their position survive the rewrite, so a counter can
// never move backwards through an edit.
func UpdatePoll(poll models.Poll, options []models.PollOption) (models.Poll, error) {
	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Options").Save(&poll).Error; err != nil {
			return err
		}

		var previous []models.PollOption
		if err := tx.Where("poll_id = ?", poll.ID).Find(&previous).Error; err != nil {
			return err
		}
		retained := make(map[int]int64, len(previous))
		for _, option := range previous {
			retained[option.Idx] = option.Votes
		}

		if err := tx.Unscoped().Where("poll_id = ?", poll.ID).
			Delete(&models.PollOption{}).Error; err != nil {
			return err
		}

		for idx := range options {
			options[idx].ID = 0
			options[idx].PollID = poll.ID
			options[idx].Idx = idx
			options[idx].Votes = retained[idx]
		}
		if len(options) > 0 {
			if err := tx.Create(&options).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return poll, err
	}

	return GetPoll(poll.ID)
}

// DeletePoll soft-deletes the poll; its options and vote records are purged
// later by the maintenance job so the dedup log keeps a short audit window.
func DeletePoll(poll models.Poll) error {
	return database.C.Delete(&poll).Error
}

func CountPolls() (int64, error) {
	var count int64
	err := database.C.Model(&models.Poll{}).Count(&count).Error
	return count, err
}

// ListAnyPolls is the moderation listing: it ignores the visibility flag.
func ListAnyPolls(take int, offset int) ([]models.Poll, error) {
	var polls []models.Poll
	if err := database.C.
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("idx ASC")
		}).
		Preload("Creator").
		Order("created_at DESC").
		Offset(offset).Limit(take).
		Find(&polls).Error; err != nil {
		return polls, err
	}
	for idx := range polls {
		polls[idx].Hydrate()
	}
	return polls, nil
}

// EndTimeFor resolves the stored duration input into an absolute deadline.
func EndTimeFor(limit models.PollTimeLimit, from time.Time) *time.Time {
	var unit time.Duration
	switch limit.Unit {
	case "hours":
		unit = time.Hour
	case "days":
		unit = 24 * time.Hour
	case "weeks":
		unit = 7 * 24 * time.Hour
	default:
		return nil
	}
	deadline := from.Add(time.Duration(limit.Amount) * unit)
	return &deadline
}
