// Package service implements the bot and web operations on top of the
// credential store, the Drive client and the Telegram notifier.
package service

import (
	"context"
	"time"

	"github.com/pysugar/drivelink/internal/config"
	"github.com/pysugar/drivelink/internal/db"
	"github.com/pysugar/drivelink/internal/db/models"
	"github.com/pysugar/drivelink/internal/drive"
	"github.com/pysugar/drivelink/internal/lease"
	"github.com/pysugar/drivelink/internal/notify"
	drivev3 "google.golang.org/api/drive/v3"
)

// DriveAPI is the subset of the Drive client the service uses.
type DriveAPI interface {
	List(ctx context.Context, accessToken string, req drive.ListRequest) (*drive.Page, error)
	LatestModifiedTime(ctx context.Context, accessToken string) (string, error)
	Get(ctx context.Context, accessToken, fileID, fields string) (*drivev3.File, error)
	FindFolder(ctx context.Context, accessToken string, names ...string) (string, error)
}

// TokenSource yields the access token to use for a credential, refreshing it
// when stale. It returns the stored token when a refresh fails.
type TokenSource interface {
	AccessToken(ctx context.Context, cred *models.Credential) string
}

// Options are the tunables of the service.
type Options struct {
	SyncInterval time.Duration
	PageSize     int64
	StatsTTL     time.Duration
	MaxMembers   int
}

// OptionsFromConfig extracts the service options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SyncInterval: cfg.Sync.Interval,
		PageSize:     cfg.Sync.PageSize,
		StatsTTL:     cfg.Stats.TTL,
		MaxMembers:   cfg.Members.MaxActive,
	}
}

// Service wires the store, Drive, tokens, notifications and scan leases together.
type Service struct {
	store    *db.Store
	drive    DriveAPI
	tokens   TokenSource
	notifier notify.Notifier
	leases   lease.Locker
	opts     Options
	now      func() time.Time
}

// New creates a Service. A nil notifier or locker disables that capability.
func New(store *db.Store, driveAPI DriveAPI, tokens TokenSource, notifier notify.Notifier, leases lease.Locker, opts Options) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if leases == nil {
		leases = lease.None{}
	}
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = 3 * time.Hour
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}
	if opts.StatsTTL <= 0 {
		opts.StatsTTL = 10 * time.Minute
	}
	if opts.MaxMembers <= 0 {
		opts.MaxMembers = 3
	}
	return &Service{
		store:    store,
		drive:    driveAPI,
		tokens:   tokens,
		notifier: notifier,
		leases:   leases,
		opts:     opts,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
