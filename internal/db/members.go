package db

import (
	"context"
	"time"

	"github.com/pysugar/drivelink/internal/db/models"
)

// ListMembers returns an owner's members in the order they were first added.
func (s *Store) ListMembers(ctx context.Context, credentialID uint) ([]models.TelegramMember, error) {
	var members []models.TelegramMember
	err := s.db.WithContext(ctx).
		Where("credential_id = ?", credentialID).
		Order("id ASC").
		Find(&members).Error
	return members, err
}

// CreateMember appends a new active member.
func (s *Store) CreateMember(ctx context.Context, credentialID uint, tgID string, now time.Time) error {
	return s.db.WithContext(ctx).Create(&models.TelegramMember{
		CredentialID: credentialID,
		TgID:         tgID,
		Active:       true,
		AddedAt:      now,
	}).Error
}

// ReactivateMember grants access again to an existing member entry.
func (s *Store) ReactivateMember(ctx context.Context, memberID uint, now time.Time) error {
	return s.db.WithContext(ctx).Model(&models.TelegramMember{}).
		Where("id = ?", memberID).
		Updates(map[string]interface{}{
			"active":   true,
			"added_at": now,
		}).Error
}

// DeactivateMember revokes a member's access and keeps the entry as history.
func (s *Store) DeactivateMember(ctx context.Context, memberID uint) error {
	return s.db.WithContext(ctx).Model(&models.TelegramMember{}).
		Where("id = ?", memberID).
		Update("active", false).Error
}

// TouchCredential bumps the credential's updated_at.
func (s *Store) TouchCredential(ctx context.Context, credentialID uint, now time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Credential{}).
		Where("id = ?", credentialID).
		Update("updated_at", now).Error
}
