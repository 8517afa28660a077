package db

import (
	"context"
	"time"

	"github.com/pysugar/drivelink/internal/db/models"
	"gorm.io/gorm/clause"
)

// AcquireScanLease takes the lease named key for holder until expiresAt. It
// succeeds when the lease is free or the previous holder's lease has expired.
func (s *Store) AcquireScanLease(ctx context.Context, key, holder string, now, expiresAt time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.ScanLease{}).
		Where("lease_key = ? AND expires_at <= ?", key, now).
		Updates(map[string]interface{}{
			"holder":     holder,
			"expires_at": expiresAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	res = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ScanLease{LeaseKey: key, Holder: holder, ExpiresAt: expiresAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseScanLease drops the lease if holder still owns it.
func (s *Store) ReleaseScanLease(ctx context.Context, key, holder string) error {
	return s.db.WithContext(ctx).
		Where("lease_key = ? AND holder = ?", key, holder).
		Delete(&models.ScanLease{}).Error
}
