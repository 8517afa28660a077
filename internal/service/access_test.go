package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pysugar/drivelink/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_InactiveOwnerBlocksOwnerAndMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOwner(t, "owner@example.com", "100")
	require.NoError(t, f.svc.ManageMember(ctx, service.ActionAdd, "100", "101"))
	require.NoError(t, f.svc.ManageMember(ctx, service.ActionAdd, "100", "102"))
	require.NoError(t, f.svc.ManageMember(ctx, service.ActionRemove, "100", "102"))

	for tgID, want := range map[string]bool{"100": true, "101": true, "102": false, "999": false} {
		got, err := f.svc.Verify(ctx, tgID)
		require.NoError(t, err)
		assert.Equal(t, want, got, "tg %s", tgID)
	}

	require.NoError(t, f.svc.BotLogout(ctx, "100"))

	for _, tgID := range []string{"100", "101", "102"} {
		got, err := f.svc.Verify(ctx, tgID)
		require.NoError(t, err)
		assert.False(t, got, "tg %s must be rejected once the owner is inactive", tgID)
	}
}

func TestVerify_MissingID(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Verify(context.Background(), "")
	assert.True(t, errors.Is(err, service.ErrValidation))
	assert.Equal(t, "Missing tg_id", err.Error())
}

func TestLink_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOwner(t, "owner@example.com", "")

	first, err := f.svc.Link(ctx, "owner@example.com", "200")
	require.NoError(t, err)
	assert.False(t, first.AlreadyLinked)
	assert.EqualValues(t, 1, first.Matched)

	second, err := f.svc.Link(ctx, "owner@example.com", "200")
	require.NoError(t, err)
	assert.True(t, second.AlreadyLinked)

	cred := f.reload(t, "owner@example.com")
	assert.Equal(t, "200", cred.Telegram.TgID)
	assert.True(t, cred.Telegram.Active)
	require.NotNil(t, cred.Telegram.NotifySentAt)

	welcomes := f.notifier.To("200")
	require.Len(t, welcomes, 2)
	assert.Contains(t, welcomes[0], "Verification complete for owner@example.com")
}

func TestLink_CreatesRecordForUnknownUser(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.Link(context.Background(), "new@example.com", "300")
	require.NoError(t, err)
	assert.EqualValues(t, 0, result.Matched)
	assert.False(t, result.AlreadyLinked)

	ok, err := f.svc.Verify(context.Background(), "300")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLink_FailedWelcomeLeavesNotifySentAtEmpty(t *testing.T) {
	f := newFixture(t)
	f.notifier.Fail = true
	f.seedOwner(t, "owner@example.com", "")

	_, err := f.svc.Link(context.Background(), "owner@example.com", "200")
	require.NoError(t, err)
	assert.Nil(t, f.reload(t, "owner@example.com").Telegram.NotifySentAt)
}

func TestLink_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Link(context.Background(), "owner@example.com", "")
	assert.True(t, errors.Is(err, service.ErrValidation))

	_, err = f.svc.Link(context.Background(), "", "200")
	assert.True(t, errors.Is(err, service.ErrUnauthorized))
}
