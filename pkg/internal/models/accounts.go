package models

import "time"

const (
	AccountRoleUser  = "user"
	AccountRoleAdmin = "admin"
)

// Account mirrors an identity held by the external identity provider.
// Rows are created lazily via an atomic upsert the first time a verified
// token is seen, so concurrent first requests cannot produce duplicates.
type Account struct {
	BaseModel

	ProviderUID string `json:"provider_uid" gorm:"uniqueIndex"`
	Name        string `json:"name"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	Avatar      string `json:"avatar"`
	Role        string `json:"role" gorm:"default:user"`

	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastSeenAt      *time.Time `json:"last_seen_at"`

	Polls []Poll `json:"polls" gorm:"foreignKey:CreatorID"`
}

func (a Account) IsAdmin() bool {
	return a.Role == AccountRoleAdmin
}
