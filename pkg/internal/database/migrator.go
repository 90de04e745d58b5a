package database

import (
	"github.com/pollroom/server/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Account{},
	&models.Poll{},
	&models.PollOption{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			AutoMaintainRange,
			&models.VoteRecord{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
