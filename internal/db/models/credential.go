package models

import "time"

// Credential is the per-account record holding OAuth tokens and the Telegram linkage.
// UserID is the verified Google email of the owner.
type Credential struct {
	ID                 uint    `gorm:"primaryKey" json:"-"`
	UserID             string  `gorm:"size:191;uniqueIndex:idx_credentials_user_id;not null" json:"userId"`
	Provider           string  `gorm:"size:32;uniqueIndex:idx_credentials_provider_account" json:"provider"`
	ProviderAccountID  *string `gorm:"size:191;uniqueIndex:idx_credentials_provider_account" json:"providerAccountId,omitempty"`
	Email              string  `json:"email"`
	Name               string  `json:"name"`
	Image              string  `json:"image"`
	Scope              string  `json:"scope"`
	AccessToken        string  `json:"-"`
	AccessTokenExpires int64   `json:"accessTokenExpires"` // epoch millis
	RefreshToken       string  `json:"-"`

	Telegram Telegram         `gorm:"embedded;embeddedPrefix:telegram_" json:"telegram"`
	Members  []TelegramMember `gorm:"foreignKey:CredentialID;constraint:OnDelete:CASCADE" json:"members,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Telegram holds the owner's bot linkage. Active=false disables bot access for
// the owner and every member.
type Telegram struct {
	TgID         string      `gorm:"size:64;index" json:"tgId"`
	Active       bool        `gorm:"index;default:false" json:"active"`
	LinkedAt     *time.Time  `json:"linkedAt,omitempty"`
	NotifySentAt *time.Time  `json:"notifySentAt,omitempty"`
	DriveSyncAt  *time.Time  `json:"driveSyncAt,omitempty"`
	Stats        *StatsCache `gorm:"serializer:json" json:"stats,omitempty"`
}

// StatsCache is the last full category count of an owner's Drive.
type StatsCache struct {
	Counts             CategoryCounts `json:"counts"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	LatestModifiedTime string         `json:"latestModifiedTime,omitempty"`
}

// CategoryCounts buckets Drive items by type. Items of any other type are not counted.
type CategoryCounts struct {
	Folder int `json:"folder"`
	PDF    int `json:"pdf"`
	Image  int `json:"image"`
	Video  int `json:"video"`
}

// TokenExpired reports whether the stored access token is missing or past its expiry.
// A zero expiry means the expiry is unknown and the token is used as-is.
func (c *Credential) TokenExpired(now time.Time) bool {
	if c.AccessToken == "" {
		return true
	}
	return c.AccessTokenExpires != 0 && now.UnixMilli() >= c.AccessTokenExpires
}

// ActiveMemberCount counts members currently granted access.
func (c *Credential) ActiveMemberCount() int {
	n := 0
	for _, m := range c.Members {
		if m.Active {
			n++
		}
	}
	return n
}

// FindMember returns the index of the member with tgID, or -1.
func (c *Credential) FindMember(tgID string) int {
	for i, m := range c.Members {
		if m.TgID == tgID {
			return i
		}
	}
	return -1
}
