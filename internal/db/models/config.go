package models

import "time"

// Setting stores runtime values generated by the service, such as the bot API key.
type Setting struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
