package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pysugar/drivelink/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManageMember_CapRejectsFourthMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOwner(t, "owner@example.com", "100")
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, f.svc.ManageMember(ctx, service.ActionAdd, "100", id))
	}
	before, err := f.svc.ListMembers(ctx, "100")
	require.NoError(t, err)

	err = f.svc.ManageMember(ctx, service.ActionAdd, "100", "4")
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrMemberCapReached))
	assert.Equal(t, "Max 3 active members reached", err.Error())

	after, err := f.svc.ListMembers(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestManageMember_ReactivationCountsAgainstCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOwner(t, "owner@example.com", "100")

	require.NoError(t, f.svc.ManageMember(ctx, service.ActionAdd, "100", "old"))
	require.NoError(t, f.svc.ManageMember(ctx, service.ActionRemove, "100", "old"))
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, f.svc.ManageMember(ctx, service.ActionAdd, "100", id))
	}

	err := f.svc.ManageMember(ctx, service.ActionAdd, "100", "old")
	assert.True(t, errors.Is(err, service.ErrMemberCapReached))

	ok, err := f.svc.Verify(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManageMember_AddingActiveMemberIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOwner(t, "owner@example.com", "100")
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, f.svc.ManageMember(ctx, service.ActionAdd, "100", id))
	}

	require.NoError(t, f.svc.ManageMember(ctx, service.ActionAdd, "100", "2"))
	members, err := f.svc.ListMembers(ctx, "100")
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestManageMember_RemoveKeepsHistoryAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOwner(t, "owner@example.com", "100")
	require.NoError(t, f.svc.ManageMember(ctx, service.ActionAdd, "100", "7"))

	assert.Equal(t, []string{"You have been added as a family member by owner@example.com."}, f.notifier.To("7"))
	assert.Equal(t, []string{"Member 7 added."}, f.notifier.To("100"))

	require.NoError(t, f.svc.ManageMember(ctx, service.ActionRemove, "100", "7"))
	members, err := f.svc.ListMembers(ctx, "100")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.False(t, members[0].Active)
	assert.Contains(t, f.notifier.To("7"), "Your access has been removed by owner@example.com.")
	assert.Contains(t, f.notifier.To("100"), "Member 7 removed.")
}

func TestManageMember_NotificationFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.notifier.Fail = true
	f.seedOwner(t, "owner@example.com", "100")
	assert.NoError(t, f.svc.ManageMember(context.Background(), service.ActionAdd, "100", "7"))
}

func TestManageMember_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOwner(t, "owner@example.com", "100")

	tests := []struct {
		name    string
		action  string
		owner   string
		member  string
		kind    error
		message string
	}{
		{name: "missing action", owner: "100", member: "1", kind: service.ErrValidation, message: "Missing action or owner_tg_id"},
		{name: "missing owner", action: "add", member: "1", kind: service.ErrValidation, message: "Missing action or owner_tg_id"},
		{name: "unknown owner", action: "add", owner: "999", member: "1", kind: service.ErrNotFound, message: "Owner not found"},
		{name: "missing member", action: "add", owner: "100", kind: service.ErrValidation, message: "Missing member_tg_id"},
		{name: "remove unknown member", action: "remove", owner: "100", member: "55", kind: service.ErrNotFound, message: "Member not found"},
		{name: "unsupported action", action: "promote", owner: "100", member: "1", kind: service.ErrValidation, message: "Unsupported action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.ManageMember(ctx, tt.action, tt.owner, tt.member)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestListMembers_UnknownOwner(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListMembers(context.Background(), "404")
	assert.True(t, errors.Is(err, service.ErrNotFound))
}
