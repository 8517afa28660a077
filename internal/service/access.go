package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pysugar/drivelink/internal/db"
	"github.com/pysugar/drivelink/internal/db/models"
)

// Verify reports whether tgID may use the bot, as owner or as an active member
// of an owner whose bot access is enabled.
func (s *Service) Verify(ctx context.Context, tgID string) (bool, error) {
	if tgID == "" {
		return false, validationError("Missing tg_id")
	}
	_, err := s.store.FindAuthorizedCredential(ctx, tgID)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify %s: %w", tgID, err)
	}
	return true, nil
}

// authorize loads the credential tgID acts on.
func (s *Service) authorize(ctx context.Context, tgID string) (*models.Credential, error) {
	if tgID == "" {
		return nil, validationError("Missing tg_id")
	}
	cred, err := s.store.FindAuthorizedCredential(ctx, tgID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, unauthorizedError("Not linked")
	}
	if err != nil {
		return nil, fmt.Errorf("load credential for %s: %w", tgID, err)
	}
	return cred, nil
}

// ownerCredential loads the credential of a signed-in web user.
func (s *Service) ownerCredential(ctx context.Context, userID string) (*models.Credential, error) {
	if userID == "" {
		return nil, unauthorizedError("Unauthorized")
	}
	cred, err := s.store.FindCredentialByUserID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, unauthorizedError("Not linked")
	}
	if err != nil {
		return nil, fmt.Errorf("load credential for %s: %w", userID, err)
	}
	return cred, nil
}

// accessToken returns a usable access token for cred, refreshing it when needed.
func (s *Service) accessToken(ctx context.Context, cred *models.Credential) (string, error) {
	token := s.tokens.AccessToken(ctx, cred)
	if token == "" {
		return "", unauthorizedError("No access token")
	}
	return token, nil
}
