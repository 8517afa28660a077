package db

import (
	"context"

	"github.com/pysugar/drivelink/internal/db/models"
	"gorm.io/gorm/clause"
)

var driveFileUpdateColumns = []string{
	"file_name", "file_type", "parent_folder", "web_view_link",
	"drive_download_link", "last_modified", "tokens", "updated_at",
}

// UpsertDriveFile inserts or refreshes one index entry keyed by (owner, file id).
// created_at is only written on first insert.
func (s *Store) UpsertDriveFile(ctx context.Context, file *models.DriveFile) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_user_id"}, {Name: "file_id"}},
		DoUpdates: clause.AssignmentColumns(driveFileUpdateColumns),
	}).Create(file).Error
}

// ListDriveFiles returns every indexed file of an owner.
func (s *Store) ListDriveFiles(ctx context.Context, ownerUserID string) ([]models.DriveFile, error) {
	var files []models.DriveFile
	err := s.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("id ASC").
		Find(&files).Error
	return files, err
}

// PageDriveFiles returns one page of an owner's index, newest first, and the total count.
func (s *Store) PageDriveFiles(ctx context.Context, ownerUserID string, page, pageSize int) ([]models.DriveFile, int64, error) {
	var total int64
	base := s.db.WithContext(ctx).Model(&models.DriveFile{}).Where("owner_user_id = ?", ownerUserID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var files []models.DriveFile
	err := s.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("last_modified DESC").
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&files).Error
	return files, total, err
}
