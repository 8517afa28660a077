package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pysugar/drivelink/internal/db"
	"github.com/pysugar/drivelink/internal/db/models"
	"github.com/pysugar/drivelink/internal/logging"
	"github.com/pysugar/drivelink/internal/notify"
)

// BotLogout disables bot access for the owner linked to ownerTgID and all of
// their members until the owner signs in and links again.
func (s *Service) BotLogout(ctx context.Context, ownerTgID string) error {
	if ownerTgID == "" {
		return validationError("Missing owner_tg_id")
	}
	owner, err := s.findOwner(ctx, s.store.FindCredentialByOwnerTgID, ownerTgID)
	if err != nil {
		return err
	}
	if err := s.store.SetTelegramActive(ctx, owner.ID, false, s.now()); err != nil {
		return fmt.Errorf("disable bot access for %s: %w", owner.UserID, err)
	}
	logging.Printf(ctx, "🚪 Bot access disabled by %s via bot", owner.UserID)

	s.notifier.Notify(ctx, notify.BotLogoutOwner(ownerTgID))
	s.notifyActiveMembers(ctx, owner, notify.BotLogoutMember)
	return nil
}

// SignOut disables bot access after the owner signs out of the website. An
// owner without a credential record has nothing to disable.
func (s *Service) SignOut(ctx context.Context, userID string) error {
	owner, err := s.store.FindCredentialByUserID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load credential for %s: %w", userID, err)
	}
	if err := s.store.SetTelegramActive(ctx, owner.ID, false, s.now()); err != nil {
		return fmt.Errorf("disable bot access for %s: %w", userID, err)
	}
	logging.Printf(ctx, "🚪 Bot access disabled for %s after sign out", userID)

	if owner.Telegram.TgID != "" {
		s.notifier.Notify(ctx, notify.SignOutOwner(owner.Telegram.TgID))
		s.notifyActiveMembers(ctx, owner, notify.SignOutMember)
	}
	return nil
}

func (s *Service) notifyActiveMembers(ctx context.Context, owner *models.Credential, message func(string) notify.Message) {
	for _, m := range owner.Members {
		if m.Active && m.TgID != "" {
			s.notifier.Notify(ctx, message(m.TgID))
		}
	}
}
