package models

import "time"

// DriveFile is one entry of the local Drive index, unique per (owner, file id).
type DriveFile struct {
	ID                uint       `gorm:"primaryKey" json:"-"`
	OwnerUserID       string     `gorm:"size:191;uniqueIndex:idx_drive_files_owner_file;not null" json:"-"`
	FileID            string     `gorm:"size:191;uniqueIndex:idx_drive_files_owner_file;not null" json:"file_id"`
	FileName          string     `json:"file_name"`
	FileType          string     `json:"file_type"`
	ParentFolder      string     `json:"parent_folder"`
	WebViewLink       string     `json:"web_view_link"`
	DriveDownloadLink string     `json:"drive_download_link"`
	LastModified      *time.Time `gorm:"index" json:"last_modified"`
	Tokens            []string   `gorm:"serializer:json" json:"tokens"`
	CreatedAt         time.Time  `json:"-"`
	UpdatedAt         time.Time  `json:"-"`
}
