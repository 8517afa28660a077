package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pysugar/drivelink/internal/db/models"
	"github.com/pysugar/drivelink/internal/drive"
	"github.com/pysugar/drivelink/internal/lease"
	"github.com/pysugar/drivelink/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drivev3 "google.golang.org/api/drive/v3"
)

func TestSync_SkipsWithinInterval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cred := f.seedOwner(t, "owner@example.com", "100")
	last := f.clock.Now().Add(-time.Hour)
	require.NoError(t, f.store.StampDriveSync(ctx, cred.ID, last))

	result, err := f.svc.Sync(ctx, "100", false)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	require.NotNil(t, result.LastSync)
	assert.True(t, result.LastSync.Equal(last))
	assert.Empty(t, f.drive.ListCalls())

	result, err = f.svc.Sync(ctx, "100", true)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Len(t, f.drive.ListCalls(), 1)
}

func TestSync_WalksEveryPageAndStamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOwner(t, "owner@example.com", "100")
	// A member acts on the owner's Drive.
	require.NoError(t, f.svc.ManageMember(ctx, service.ActionAdd, "100", "101"))

	f.drive.pages[""] = &drive.Page{
		Files: []*drivev3.File{
			file("a", "Holiday.jpg", "image/jpeg"),
			file("b", "notes.zip", "application/zip"),
			file("c", "Budget 2025.pdf", drive.MimeTypePDF),
		},
		NextPageToken: "p2",
	}
	f.drive.pages["p2"] = &drive.Page{
		Files: []*drivev3.File{
			file("d", "clip.mp4", "video/mp4"),
			file("e", "Plan", "application/vnd.google-apps.document"),
			file("f", "Photos", drive.MimeTypeFolder),
		},
	}

	result, err := f.svc.Sync(ctx, "101", false)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)

	calls := f.drive.ListCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "", calls[0].PageToken)
	assert.Equal(t, "p2", calls[1].PageToken)
	assert.Equal(t, drive.SyncQuery(), calls[0].Query)
	assert.EqualValues(t, 1000, calls[0].PageSize)
	assert.True(t, calls[0].AllDrives)
	assert.Equal(t, []string{"access-owner@example.com", "access-owner@example.com"}, f.drive.tokens)

	files, err := f.store.ListDriveFiles(ctx, "owner@example.com")
	require.NoError(t, err)
	var ids []string
	for _, file := range files {
		ids = append(ids, file.FileID)
	}
	assert.ElementsMatch(t, []string{"a", "c", "d", "e"}, ids)

	cred := f.reload(t, "owner@example.com")
	require.NotNil(t, cred.Telegram.DriveSyncAt)
	assert.True(t, cred.Telegram.DriveSyncAt.Equal(f.clock.Now()))
}

func TestSync_AbortedScanDoesNotStamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOwner(t, "owner@example.com", "100")

	f.drive.pages[""] = &drive.Page{
		Files:         []*drivev3.File{file("a", "one.png", "image/png")},
		NextPageToken: "p2",
	}
	f.drive.errs["p2"] = &drive.UpstreamError{Status: 500, Message: "Backend Error"}

	_, err := f.svc.Sync(ctx, "100", true)
	var upstream *drive.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, 500, upstream.Status)

	assert.Nil(t, f.reload(t, "owner@example.com").Telegram.DriveSyncAt)
	files, err := f.store.ListDriveFiles(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestSync_ResyncUpdatesInPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOwner(t, "owner@example.com", "100")

	f.drive.pages[""] = &drive.Page{Files: []*drivev3.File{file("a", "Draft.pdf", drive.MimeTypePDF)}}
	_, err := f.svc.Sync(ctx, "100", true)
	require.NoError(t, err)

	f.drive.pages[""] = &drive.Page{Files: []*drivev3.File{file("a", "Final Report.pdf", drive.MimeTypePDF)}}
	_, err = f.svc.Sync(ctx, "100", true)
	require.NoError(t, err)

	files, err := f.store.ListDriveFiles(ctx, "owner@example.com")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Final Report.pdf", files[0].FileName)
	assert.Equal(t, []string{"final", "report"}, files[0].Tokens)
}

func TestSync_Unauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Sync(ctx, "404", false)
	require.True(t, errors.Is(err, service.ErrUnauthorized))
	assert.Equal(t, "Not linked", err.Error())

	cred := f.seedOwner(t, "owner@example.com", "100")
	require.NoError(t, f.store.DB().Model(&models.Credential{}).
		Where("id = ?", cred.ID).Update("access_token", "").Error)

	_, err = f.svc.Sync(ctx, "100", true)
	require.True(t, errors.Is(err, service.ErrUnauthorized))
	assert.Equal(t, "No access token", err.Error())
	assert.Empty(t, f.drive.ListCalls())
}

func TestSync_LeaseHeldByAnotherScan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOwner(t, "owner@example.com", "100")

	leases := lease.NewDB(f.store, time.Minute).WithClock(f.clock.Now)
	f.useLeases(leases)

	release, err := leases.Acquire(ctx, "sync:owner@example.com")
	require.NoError(t, err)

	_, err = f.svc.Sync(ctx, "100", true)
	assert.True(t, errors.Is(err, service.ErrScanInProgress))
	assert.Empty(t, f.drive.ListCalls())

	// Stats scans use their own key.
	_, err = f.svc.Stats(ctx, "100", true)
	assert.NoError(t, err)

	release(ctx)
	_, err = f.svc.Sync(ctx, "100", true)
	assert.NoError(t, err)
}
