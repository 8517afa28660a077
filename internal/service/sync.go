package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pysugar/drivelink/internal/drive"
	"github.com/pysugar/drivelink/internal/logging"
)

// SyncResult is the outcome of a sync request.
type SyncResult struct {
	Skipped  bool
	Total    int
	LastSync *time.Time
}

// Sync mirrors the owner's images, PDFs, videos and documents into the local
// index. It runs at most once per sync interval unless force is set.
func (s *Service) Sync(ctx context.Context, tgID string, force bool) (*SyncResult, error) {
	cred, err := s.authorize(ctx, tgID)
	if err != nil {
		return nil, err
	}

	last := cred.Telegram.DriveSyncAt
	if !force && last != nil && s.now().Sub(*last) < s.opts.SyncInterval {
		return &SyncResult{Skipped: true, LastSync: last}, nil
	}

	token, err := s.accessToken(ctx, cred)
	if err != nil {
		return nil, err
	}

	release, err := s.leases.Acquire(ctx, "sync:"+cred.UserID)
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	total := 0
	pageToken := ""
	for {
		page, err := s.drive.List(ctx, token, drive.ListRequest{
			Query:     drive.SyncQuery(),
			Fields:    drive.SyncFields,
			PageSize:  s.opts.PageSize,
			PageToken: pageToken,
			AllDrives: true,
		})
		if err != nil {
			logging.Printf(ctx, "❌ Sync for %s aborted after %d files: %v", cred.UserID, total, err)
			return nil, err
		}

		for _, f := range page.Files {
			if !drive.IsIndexable(f.MimeType) {
				continue
			}
			record := drive.ToIndexRecord(cred.UserID, f)
			if err := s.store.UpsertDriveFile(ctx, record); err != nil {
				return nil, fmt.Errorf("index %s: %w", f.Id, err)
			}
			total++
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	now := s.now()
	if err := s.store.StampDriveSync(ctx, cred.ID, now); err != nil {
		return nil, fmt.Errorf("stamp sync for %s: %w", cred.UserID, err)
	}
	logging.Printf(ctx, "✅ Synced %d files for %s", total, cred.UserID)
	return &SyncResult{Total: total}, nil
}
