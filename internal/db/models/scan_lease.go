package models

import "time"

// ScanLease marks a full Drive scan in progress for one owner.
type ScanLease struct {
	LeaseKey  string    `gorm:"primaryKey;size:191"`
	Holder    string    `gorm:"size:64;not null"`
	ExpiresAt time.Time `gorm:"index"`
}
