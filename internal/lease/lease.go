// Package lease guards full Drive scans so that one owner has at most one
// sync or stats scan running at a time.
package lease

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pysugar/drivelink/internal/config"
	"github.com/pysugar/drivelink/internal/db"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when another scan holds the lease.
var ErrHeld = errors.New("scan in progress")

// Release gives the lease back. It is safe to call once the lease has expired.
type Release func(ctx context.Context)

// Locker hands out per-key leases.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// New builds the locker selected by cfg.Backend. The returned close function
// releases any connection the backend opened.
func New(cfg config.LeaseConfig, store *db.Store) (Locker, func() error, error) {
	switch cfg.Backend {
	case config.LeaseDB:
		return NewDB(store, cfg.TTL), func() error { return nil }, nil
	case config.LeaseRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis %s: %w", cfg.RedisAddr, err)
		}
		log.Printf("🔒 Scan leases stored in redis at %s", cfg.RedisAddr)
		return NewRedis(client, cfg.TTL), client.Close, nil
	default:
		return None{}, func() error { return nil }, nil
	}
}

// None never blocks. Concurrent scans for one owner are allowed.
type None struct{}

func (None) Acquire(context.Context, string) (Release, error) {
	return func(context.Context) {}, nil
}

// DB stores leases in the scan_leases table.
type DB struct {
	store *db.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewDB(store *db.Store, ttl time.Duration) *DB {
	return &DB{store: store, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (l *DB) WithClock(now func() time.Time) *DB {
	l.now = now
	return l
}

func (l *DB) Acquire(ctx context.Context, key string) (Release, error) {
	holder := uuid.New().String()
	now := l.now()
	ok, err := l.store.AcquireScanLease(ctx, key, holder, now, now.Add(l.ttl))
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return func(ctx context.Context) {
		if err := l.store.ReleaseScanLease(ctx, key, holder); err != nil {
			log.Printf("⚠️ Failed to release lease %s: %v", key, err)
		}
	}, nil
}

const redisKeyPrefix = "drivelink:lease:"

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis stores leases as keys with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (l *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	holder := uuid.New().String()
	redisKey := redisKeyPrefix + key
	ok, err := l.client.SetNX(ctx, redisKey, holder, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return func(ctx context.Context) {
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, holder).Err(); err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("⚠️ Failed to release lease %s: %v", key, err)
		}
	}, nil
}
