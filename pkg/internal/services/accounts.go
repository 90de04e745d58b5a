package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/pollroom/server/pkg/internal/database"
	"github.com/pollroom/server/pkg/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertAccount reconciles a verified identity-provider token with the local
// account table. The upsert is a single ON CONFLICT statement keyed on the
// provider uid, so concurrent first logins cannot create duplicate rows.
// A soft-deleted row is resurrected here: the unique index still holds the
// identity, so a returning user reclaims their account instead of being
// locked out behind the tombstone.
func UpsertAccount(account models.Account) (models.Account, error) {
	now := time.Now()
	account.LastSeenAt = &now

	if err := database.C.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_uid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "avatar", "email_verified_at", "last_seen_at", "deleted_at",
		}),
	}).Create(&account).Error; err != nil {
		return account, fmt.Errorf("unable to upsert account: %v", err)
	}

	var out models.Account
	if err := database.C.
		Where("provider_uid = ?", account.ProviderUID).
		First(&out).Error; err != nil {
		return out, err
	}
	return out, nil
}

// UpdateAccountProfile adjusts the owner-editable display fields. Identity
// fields stay bound to the provider token and are only ever written by the
// login upsert.
func UpdateAccountProfile(account models.Account, name, avatar string) (models.Account, error) {
	account.Name = name
	account.Avatar = avatar
	if err := database.C.Model(&account).Updates(map[string]any{
		"name":   name,
		"avatar": avatar,
	}).Error; err != nil {
		return account, fmt.Errorf("unable to update account profile: %v", err)
	}
	return account, nil
}

func GetAccountWithID(id uint) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("id = ?", id).First(&account).Error; err != nil {
		return account, fmt.Errorf("unable to get account by id: %v", err)
	}
	return account, nil
}

func ListAccounts(take int, offset int) ([]models.Account, error) {
	var accounts []models.Account
	err := database.C.
		Order("created_at DESC").
		Offset(offset).Limit(take).
		Find(&accounts).Error
	return accounts, err
}

func CountAccounts() (int64, error) {
	var count int64
	err := database.C.Model(&models.Account{}).Count(&count).Error
	return count, err
}

// DeleteAccount removes the account and everything it owns. Polls go through
// the regular soft-delete path so their vote records age out via the
// maintenance job instead of vanishing mid-request.
func DeleteAccount(account models.Account) error {
	return database.C.Transaction(func(tx *gorm.DB) error {
		var polls []models.Poll
		if err := tx.Where("creator_id = ?", account.ID).Find(&polls).Error; err != nil {
			return err
		}
		for _, poll := range polls {
			if err := tx.Delete(&poll).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&account).Error
	})
}

func GetAccountByProviderUID(uid string) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("provider_uid = ?", uid).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, err
		}
		return account, fmt.Errorf("unable to get account: %v", err)
	}
	return account, nil
}
