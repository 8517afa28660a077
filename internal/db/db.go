package db

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/pysugar/drivelink/internal/config"
	"github.com/pysugar/drivelink/internal/db/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

const botAPIKeySetting = "bot_api_key"

// Store owns the database connection shared by every handler.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database and runs migrations.
func Open(cfg config.DatabaseConfig, debug bool) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case config.DatabaseMySQL:
		dialector = mysql.Open(cfg.DSN)
	case config.DatabasePostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.SQLitePath + "?_pragma=busy_timeout(5000)"
		}
		dialector = sqlite.Open(dsn)
	}

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	gdb, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Type, err)
	}
	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("📦 Database ready (%s)", cfg.Type)
	return NewStore(gdb), nil
}

// Migrate creates or updates every table the service uses.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.Credential{},
		&models.TelegramMember{},
		&models.DriveFile{},
		&models.ScanLease{},
		&models.Setting{},
	)
}

// NewStore wraps an already migrated connection.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn against a store bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// BotAPIKey returns the key guarding the bot API. A configured key wins and is
// persisted; otherwise the stored key is used, generating one on first run.
func (s *Store) BotAPIKey(configured string) (string, error) {
	if configured != "" {
		err := s.db.Save(&models.Setting{Name: botAPIKeySetting, Value: configured}).Error
		return configured, err
	}

	var setting models.Setting
	err := s.db.Where("name = ?", botAPIKeySetting).First(&setting).Error
	if err == nil && setting.Value != "" {
		return setting.Value, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	keyBytes := make([]byte, 16)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", err
	}
	apiKey := "bk-" + hex.EncodeToString(keyBytes)
	if err := s.db.Save(&models.Setting{Name: botAPIKeySetting, Value: apiKey}).Error; err != nil {
		return "", err
	}
	log.Printf("🔑 Generated new bot API key: %s", apiKey)
	return apiKey, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
