package service

import (
	"context"
	"fmt"

	"github.com/pysugar/drivelink/internal/db"
	"github.com/pysugar/drivelink/internal/logging"
	"github.com/pysugar/drivelink/internal/notify"
)

// Link binds tgID to the signed-in owner userID and enables bot access. The
// owner is greeted on Telegram; the delivery time is recorded when it succeeds.
func (s *Service) Link(ctx context.Context, userID, tgID string) (*db.LinkResult, error) {
	if userID == "" {
		return nil, unauthorizedError("Unauthorized")
	}
	if tgID == "" {
		return nil, validationError("Missing tgId")
	}

	now := s.now()
	result, err := s.store.LinkTelegram(ctx, userID, tgID, now)
	if err != nil {
		return nil, fmt.Errorf("link %s to %s: %w", tgID, userID, err)
	}
	logging.Printf(ctx, "🔗 Linked Telegram %s to %s (already linked: %v)", tgID, userID, result.AlreadyLinked)

	if s.notifier.Notify(ctx, notify.Welcome(tgID, userID)) {
		if err := s.store.MarkNotified(ctx, userID, s.now()); err != nil {
			logging.Printf(ctx, "⚠️ Failed to record welcome message for %s: %v", userID, err)
		}
	}
	return &result, nil
}
