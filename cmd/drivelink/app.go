package main

import (
	"fmt"
	"log"

	"github.com/pysugar/drivelink/internal/auth/token"
	"github.com/pysugar/drivelink/internal/config"
	"github.com/pysugar/drivelink/internal/db"
	"github.com/pysugar/drivelink/internal/drive"
	"github.com/pysugar/drivelink/internal/lease"
	"github.com/pysugar/drivelink/internal/notify"
	"github.com/pysugar/drivelink/internal/service"
)

// app holds the collaborators shared by every command. The caller must defer Close.
type app struct {
	cfg        *config.Config
	store      *db.Store
	refresher  *token.Refresher
	service    *service.Service
	closeLease func() error
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := db.Open(cfg.Database, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	leases, closeLease, err := lease.New(cfg.Lease, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("initializing scan lease: %w", err)
	}

	refresher := token.NewRefresher(store, cfg.Google)
	var notifier notify.Notifier = notify.Nop{}
	if cfg.Telegram.BotToken != "" {
		notifier = notify.NewTelegram(cfg.Telegram)
	} else {
		log.Printf("⚠️ TELEGRAM_BOT_TOKEN not set, notifications are disabled")
	}

	svc := service.New(
		store,
		drive.NewClient(cfg.Drive, cfg.Google.DriveEndpoint),
		refresher,
		notifier,
		leases,
		service.OptionsFromConfig(cfg),
	)

	return &app{
		cfg:        cfg,
		store:      store,
		refresher:  refresher,
		service:    svc,
		closeLease: closeLease,
	}, nil
}

func (a *app) Close() {
	if err := a.closeLease(); err != nil {
		log.Printf("⚠️ Failed to close lease backend: %v", err)
	}
	if err := a.store.Close(); err != nil {
		log.Printf("⚠️ Failed to close database: %v", err)
	}
}
