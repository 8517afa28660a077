package models

import "time"

// TelegramMember is a delegated Telegram identity on an owner's credential.
// Removed members are deactivated, never deleted.
type TelegramMember struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	CredentialID uint      `gorm:"uniqueIndex:idx_members_credential_tg;not null" json:"-"`
	TgID         string    `gorm:"size:64;uniqueIndex:idx_members_credential_tg;index;not null" json:"tgId"`
	Active       bool      `gorm:"index;default:false" json:"active"`
	AddedAt      time.Time `json:"addedAt"`
	UpdatedAt    time.Time `json:"-"`
}

func (TelegramMember) TableName() string {
	return "telegram_members"
}
