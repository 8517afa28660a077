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

// Member actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// ListMembers returns every member entry of the owner linked to ownerTgID,
// including removed ones.
func (s *Service) ListMembers(ctx context.Context, ownerTgID string) ([]models.TelegramMember, error) {
	if ownerTgID == "" {
		return nil, validationError("Missing owner_tg_id")
	}
	owner, err := s.findOwner(ctx, s.store.FindCredentialByOwnerTgID, ownerTgID)
	if err != nil {
		return nil, err
	}
	if owner.Members == nil {
		return []models.TelegramMember{}, nil
	}
	return owner.Members, nil
}

// ManageMember adds or removes a delegated member of the owner linked to ownerTgID.
// At most MaxMembers members are active at once. Removed members are kept inactive.
func (s *Service) ManageMember(ctx context.Context, action, ownerTgID, memberTgID string) error {
	if action == "" || ownerTgID == "" {
		return validationError("Missing action or owner_tg_id")
	}

	var owner *models.Credential
	err := s.store.Transaction(ctx, func(tx *db.Store) error {
		var err error
		owner, err = s.findOwner(ctx, tx.LockCredentialByOwnerTgID, ownerTgID)
		if err != nil {
			return err
		}

		switch action {
		case ActionAdd:
			return s.addMember(ctx, tx, owner, memberTgID)
		case ActionRemove:
			return s.removeMember(ctx, tx, owner, memberTgID)
		default:
			return validationError("Unsupported action")
		}
	})
	if err != nil {
		return err
	}

	if action == ActionAdd {
		logging.Printf(ctx, "👥 Member %s added to %s", memberTgID, owner.UserID)
		s.notifier.Notify(ctx, notify.MemberAdded(memberTgID, owner.UserID))
		s.notifier.Notify(ctx, notify.MemberAddedOwner(owner.Telegram.TgID, memberTgID))
	} else {
		logging.Printf(ctx, "👥 Member %s removed from %s", memberTgID, owner.UserID)
		s.notifier.Notify(ctx, notify.MemberRemoved(memberTgID, owner.UserID))
		s.notifier.Notify(ctx, notify.MemberRemovedOwner(owner.Telegram.TgID, memberTgID))
	}
	return nil
}

func (s *Service) addMember(ctx context.Context, tx *db.Store, owner *models.Credential, memberTgID string) error {
	if memberTgID == "" {
		return validationError("Missing member_tg_id")
	}

	idx := owner.FindMember(memberTgID)
	alreadyActive := idx >= 0 && owner.Members[idx].Active
	if !alreadyActive && owner.ActiveMemberCount() >= s.opts.MaxMembers {
		return &Error{Kind: ErrMemberCapReached, Message: fmt.Sprintf("Max %d active members reached", s.opts.MaxMembers)}
	}

	now := s.now()
	var err error
	switch {
	case idx < 0:
		err = tx.CreateMember(ctx, owner.ID, memberTgID, now)
	default:
		err = tx.ReactivateMember(ctx, owner.Members[idx].ID, now)
	}
	if err != nil {
		return fmt.Errorf("add member %s: %w", memberTgID, err)
	}
	return tx.TouchCredential(ctx, owner.ID, now)
}

func (s *Service) removeMember(ctx context.Context, tx *db.Store, owner *models.Credential, memberTgID string) error {
	if memberTgID == "" {
		return validationError("Missing member_tg_id")
	}

	idx := owner.FindMember(memberTgID)
	if idx < 0 {
		return notFoundError("Member not found")
	}
	if err := tx.DeactivateMember(ctx, owner.Members[idx].ID); err != nil {
		return fmt.Errorf("remove member %s: %w", memberTgID, err)
	}
	return tx.TouchCredential(ctx, owner.ID, s.now())
}

func (s *Service) findOwner(ctx context.Context, find func(context.Context, string) (*models.Credential, error), ownerTgID string) (*models.Credential, error) {
	owner, err := find(ctx, ownerTgID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, notFoundError("Owner not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load owner %s: %w", ownerTgID, err)
	}
	return owner, nil
}
