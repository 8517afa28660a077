package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pysugar/drivelink/internal/db/models"
	"github.com/pysugar/drivelink/internal/drive"
	"github.com/pysugar/drivelink/internal/logging"
)

// StatsResult is the per-category count of an owner's Drive.
type StatsResult struct {
	Counts    models.CategoryCounts
	UpdatedAt time.Time
	Cached    bool
}

// Stats counts the owner's folders, PDFs, images and videos. A cached result is
// reused unless force is set, as long as the Drive head pointer is unchanged or
// the cache is younger than the stats TTL.
func (s *Service) Stats(ctx context.Context, tgID string, force bool) (*StatsResult, error) {
	cred, err := s.authorize(ctx, tgID)
	if err != nil {
		return nil, err
	}

	token, err := s.accessToken(ctx, cred)
	if err != nil {
		return nil, err
	}

	head, err := s.drive.LatestModifiedTime(ctx, token)
	if err != nil {
		logging.Printf(ctx, "⚠️ Head pointer lookup failed for %s: %v", cred.UserID, err)
		head = ""
	}

	if cached := cred.Telegram.Stats; !force && cached != nil {
		sameHead := cached.LatestModifiedTime != "" && head != "" && cached.LatestModifiedTime == head
		fresh := s.now().Sub(cached.UpdatedAt) < s.opts.StatsTTL
		if sameHead || fresh {
			return &StatsResult{Counts: cached.Counts, UpdatedAt: cached.UpdatedAt, Cached: true}, nil
		}
	}

	release, err := s.leases.Acquire(ctx, "stats:"+cred.UserID)
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	var counts models.CategoryCounts
	scanned := 0
	pageToken := ""
	for {
		page, err := s.drive.List(ctx, token, drive.ListRequest{
			Query:     drive.StatsQuery,
			Fields:    drive.StatsFields,
			PageSize:  s.opts.PageSize,
			PageToken: pageToken,
			AllDrives: true,
		})
		if err != nil {
			return nil, err
		}
		for _, f := range page.Files {
			drive.Count(&counts, drive.Classify(f.MimeType))
		}
		scanned += len(page.Files)

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	stats := &models.StatsCache{
		Counts:             counts,
		UpdatedAt:          s.now(),
		LatestModifiedTime: head,
	}
	if err := s.store.SaveStats(ctx, cred.ID, stats); err != nil {
		return nil, fmt.Errorf("save stats for %s: %w", cred.UserID, err)
	}
	logging.Printf(ctx, "📊 Counted %d items for %s", scanned, cred.UserID)
	return &StatsResult{Counts: counts, UpdatedAt: stats.UpdatedAt}, nil
}
