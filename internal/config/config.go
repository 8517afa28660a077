// Package config loads drivelink settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseType selects the gorm dialector.
type DatabaseType string

const (
	DatabaseSQLite   DatabaseType = "sqlite"
	DatabaseMySQL    DatabaseType = "mysql"
	DatabasePostgres DatabaseType = "postgres"
)

// LeaseBackend selects how concurrent full scans for one owner are guarded.
type LeaseBackend string

const (
	LeaseNone  LeaseBackend = "none"
	LeaseDB    LeaseBackend = "db"
	LeaseRedis LeaseBackend = "redis"
)

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"` // used to build the OAuth redirect URL; derived from the request when empty
}

type DatabaseConfig struct {
	Type       DatabaseType `yaml:"type"`
	DSN        string       `yaml:"dsn"`
	SQLitePath string       `yaml:"sqlite_path"`
}

type GoogleConfig struct {
	ClientID      string `yaml:"client_id"`
	ClientSecret  string `yaml:"client_secret"`
	TokenURL      string `yaml:"token_url"`      // overrides the Google token endpoint
	DriveEndpoint string `yaml:"drive_endpoint"` // overrides the Drive v3 base path
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	APIBase  string `yaml:"api_base"`
}

type SessionConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type BotConfig struct {
	// APIKey protects /api/bot. When empty a key is generated and stored on first run.
	APIKey string `yaml:"api_key"`
}

type SyncConfig struct {
	Interval time.Duration `yaml:"interval"`
	PageSize int64         `yaml:"page_size"`
}

type StatsConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type MembersConfig struct {
	MaxActive int `yaml:"max_active"`
}

type LeaseConfig struct {
	Backend       LeaseBackend  `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

type DriveConfig struct {
	RequestsPerSecond float64       `yaml:"rps"`
	Burst             int           `yaml:"burst"`
	Timeout           time.Duration `yaml:"timeout"`
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Google   GoogleConfig   `yaml:"google"`
	Telegram TelegramConfig `yaml:"telegram"`
	Session  SessionConfig  `yaml:"session"`
	Bot      BotConfig      `yaml:"bot"`
	Sync     SyncConfig     `yaml:"sync"`
	Stats    StatsConfig    `yaml:"stats"`
	Members  MembersConfig  `yaml:"members"`
	Lease    LeaseConfig    `yaml:"lease"`
	Drive    DriveConfig    `yaml:"drive"`
	Debug    bool           `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Type:       DatabaseSQLite,
			SQLitePath: "drivelink.db",
		},
		Telegram: TelegramConfig{
			APIBase: "https://api.telegram.org",
		},
		Session: SessionConfig{
			TTL: 30 * 24 * time.Hour,
		},
		Sync: SyncConfig{
			Interval: 3 * time.Hour,
			PageSize: 1000,
		},
		Stats: StatsConfig{
			TTL: 10 * time.Minute,
		},
		Members: MembersConfig{
			MaxActive: 3,
		},
		Lease: LeaseConfig{
			Backend: LeaseNone,
			TTL:     15 * time.Minute,
		},
		Drive: DriveConfig{
			RequestsPerSecond: 8,
			Burst:             10,
			Timeout:           60 * time.Second,
		},
	}
}

// Load reads the YAML file at path (if non-empty) over the defaults and applies
// environment overrides. A missing file at the default location is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	setString(&c.Server.Host, "HOST")
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	setString(&c.Server.PublicURL, "PUBLIC_URL")

	if v := strings.TrimSpace(os.Getenv("DATABASE_TYPE")); v != "" {
		c.Database.Type = DatabaseType(strings.ToLower(v))
	}
	setString(&c.Database.DSN, "DATABASE_URL")

	setString(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Session.Secret, "SESSION_SECRET")
	setString(&c.Bot.APIKey, "DRIVELINK_BOT_API_KEY")

	setString(&c.Lease.RedisAddr, "REDIS_ADDR")
	setString(&c.Lease.RedisPassword, "REDIS_PASSWORD")
	if v := strings.ToLower(os.Getenv("DRIVELINK_DEBUG")); v == "1" || v == "true" || v == "yes" {
		c.Debug = true
	}
}

// Validate reports configuration values the service cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case DatabaseSQLite:
		if c.Database.SQLitePath == "" && c.Database.DSN == "" {
			return errors.New("database: sqlite requires sqlite_path or dsn")
		}
	case DatabaseMySQL, DatabasePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database: %s requires dsn", c.Database.Type)
		}
	default:
		return fmt.Errorf("database: unknown type %q", c.Database.Type)
	}

	switch c.Lease.Backend {
	case LeaseNone, LeaseDB:
	case LeaseRedis:
		if c.Lease.RedisAddr == "" {
			return errors.New("lease: redis backend requires redis_addr")
		}
	default:
		return fmt.Errorf("lease: unknown backend %q", c.Lease.Backend)
	}

	if c.Sync.Interval <= 0 {
		return errors.New("sync.interval must be positive")
	}
	if c.Sync.PageSize <= 0 || c.Sync.PageSize > 1000 {
		return errors.New("sync.page_size must be within 1..1000")
	}
	if c.Stats.TTL <= 0 {
		return errors.New("stats.ttl must be positive")
	}
	if c.Members.MaxActive <= 0 {
		return errors.New("members.max_active must be positive")
	}
	if c.Lease.Backend != LeaseNone && c.Lease.TTL <= 0 {
		return errors.New("lease.ttl must be positive")
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
