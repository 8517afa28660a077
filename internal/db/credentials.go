package db

import (
	"context"
	"errors"
	"time"

	"github.com/pysugar/drivelink/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SignIn carries the identity and tokens returned by a completed OAuth login.
type SignIn struct {
	Provider          string
	ProviderAccountID string
	Email             string
	Name              string
	Image             string
	Scope             string
	AccessToken       string
	AccessTokenExpiry time.Time
	RefreshToken      string
}

// LinkResult mirrors the matched/modified counters reported to the caller of link.
type LinkResult struct {
	Matched       int64
	Modified      int64
	AlreadyLinked bool
}

func (s *Store) withMembers(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Members", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("telegram_members.id ASC")
	})
}

// FindCredentialByUserID loads the credential of a signed-in owner.
func (s *Store) FindCredentialByUserID(ctx context.Context, userID string) (*models.Credential, error) {
	var cred models.Credential
	if err := s.withMembers(ctx).Where("user_id = ?", userID).First(&cred).Error; err != nil {
		return nil, translate(err)
	}
	return &cred, nil
}

// FindCredentialByOwnerTgID loads the credential whose owner is linked to tgID,
// regardless of whether bot access is active.
func (s *Store) FindCredentialByOwnerTgID(ctx context.Context, tgID string) (*models.Credential, error) {
	var cred models.Credential
	if err := s.withMembers(ctx).Where("telegram_tg_id = ?", tgID).First(&cred).Error; err != nil {
		return nil, translate(err)
	}
	return &cred, nil
}

// LockCredentialByOwnerTgID is FindCredentialByOwnerTgID holding a row lock on the
// credential until the surrounding transaction ends. SQLite has no row locks and
// relies on its single writer instead.
func (s *Store) LockCredentialByOwnerTgID(ctx context.Context, tgID string) (*models.Credential, error) {
	var cred models.Credential
	if err := s.withMembers(ctx).Scopes(forUpdate).Where("telegram_tg_id = ?", tgID).First(&cred).Error; err != nil {
		return nil, translate(err)
	}
	return &cred, nil
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

// FindAuthorizedCredential returns the active credential that tgID may act on,
// either as the owner or as an active member.
func (s *Store) FindAuthorizedCredential(ctx context.Context, tgID string) (*models.Credential, error) {
	var cred models.Credential
	err := s.withMembers(ctx).
		Where("telegram_active = ?", true).
		Where("telegram_tg_id = ? OR EXISTS (SELECT 1 FROM telegram_members m WHERE m.credential_id = credentials.id AND m.tg_id = ? AND m.active = ?)",
			tgID, tgID, true).
		Order("credentials.id ASC").
		First(&cred).Error
	if err != nil {
		return nil, translate(err)
	}
	return &cred, nil
}

// UpsertSignIn records the identity and tokens of a successful login.
// Telegram linkage and creation time are preserved on existing records.
func (s *Store) UpsertSignIn(ctx context.Context, in SignIn) (*models.Credential, error) {
	var out models.Credential
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Credential
		err := tx.Where("provider = ? AND provider_account_id = ?", in.Provider, in.ProviderAccountID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Where("user_id = ?", in.Email).First(&existing).Error
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		accountID := in.ProviderAccountID
		existing.UserID = in.Email
		existing.Provider = in.Provider
		existing.ProviderAccountID = &accountID
		existing.Email = in.Email
		existing.Name = in.Name
		existing.Image = in.Image
		existing.Scope = in.Scope
		existing.AccessToken = in.AccessToken
		existing.AccessTokenExpires = in.AccessTokenExpiry.UnixMilli()
		if in.AccessTokenExpiry.IsZero() {
			existing.AccessTokenExpires = 0
		}
		if in.RefreshToken != "" {
			existing.RefreshToken = in.RefreshToken
		}
		existing.Members = nil

		if err := tx.Omit("Members").Save(&existing).Error; err != nil {
			return err
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LinkTelegram binds tgID to the owner's record and re-enables bot access,
// creating the record when the owner has none. Members and stats are kept.
func (s *Store) LinkTelegram(ctx context.Context, userID, tgID string, now time.Time) (LinkResult, error) {
	var result LinkResult

	existing, err := s.FindCredentialByUserID(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return result, err
	}

	if existing == nil {
		cred := models.Credential{
			UserID: userID,
			Email:  userID,
			Telegram: models.Telegram{
				TgID:     tgID,
				Active:   true,
				LinkedAt: &now,
			},
		}
		if err := s.db.WithContext(ctx).Omit("Members").Create(&cred).Error; err != nil {
			return result, err
		}
		return result, nil
	}

	result.Matched = 1
	result.AlreadyLinked = existing.Telegram.TgID == tgID

	res := s.db.WithContext(ctx).Model(&models.Credential{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"telegram_tg_id":     tgID,
			"telegram_active":    true,
			"telegram_linked_at": now,
			"updated_at":         now,
		})
	if res.Error != nil {
		return result, res.Error
	}
	result.Modified = res.RowsAffected
	return result, nil
}

// MarkNotified stamps the time the link welcome message was delivered.
func (s *Store) MarkNotified(ctx context.Context, userID string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Credential{}).
		Where("user_id = ?", userID).
		Update("telegram_notify_sent_at", at).Error
}

// UpdateTokens stores a refreshed access token together with its expiry.
func (s *Store) UpdateTokens(ctx context.Context, credentialID uint, accessToken string, expiresMillis int64, refreshToken string, now time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Credential{}).
		Where("id = ?", credentialID).
		Updates(map[string]interface{}{
			"access_token":         accessToken,
			"access_token_expires": expiresMillis,
			"refresh_token":        refreshToken,
			"updated_at":           now,
		}).Error
}

// SetTelegramActive toggles bot access for the owner and all members.
func (s *Store) SetTelegramActive(ctx context.Context, credentialID uint, active bool, now time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Credential{}).
		Where("id = ?", credentialID).
		Updates(map[string]interface{}{
			"telegram_active": active,
			"updated_at":      now,
		}).Error
}

// SaveStats persists the result of a full stats scan.
func (s *Store) SaveStats(ctx context.Context, credentialID uint, stats *models.StatsCache) error {
	return s.db.WithContext(ctx).Model(&models.Credential{ID: credentialID}).
		Select("telegram_stats", "updated_at").
		Updates(&models.Credential{
			Telegram:  models.Telegram{Stats: stats},
			UpdatedAt: stats.UpdatedAt,
		}).Error
}

// StampDriveSync records the completion time of a full sync.
func (s *Store) StampDriveSync(ctx context.Context, credentialID uint, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Credential{}).
		Where("id = ?", credentialID).
		Update("telegram_drive_sync_at", at).Error
}
