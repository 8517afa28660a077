package lease

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pysugar/drivelink/internal/config"
	"github.com/pysugar/drivelink/internal/testutil"
)

func TestDB_SecondAcquireFailsUntilRelease(t *testing.T) {
	store := testutil.NewStore(t)
	clock := testutil.FixedClock()
	locker := NewDB(store, 15*time.Minute).WithClock(clock.Now)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "sync:owner@example.com")
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := locker.Acquire(ctx, "sync:owner@example.com"); !errors.Is(err, ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}

	otherRelease, err := locker.Acquire(ctx, "stats:owner@example.com")
	if err != nil {
		t.Fatalf("independent key should be free: %v", err)
	}
	otherRelease(ctx)

	release(ctx)
	again, err := locker.Acquire(ctx, "sync:owner@example.com")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again(ctx)
}

func TestDB_ExpiredLeaseCanBeTakenOver(t *testing.T) {
	store := testutil.NewStore(t)
	clock := testutil.FixedClock()
	locker := NewDB(store, time.Minute).WithClock(clock.Now)
	ctx := context.Background()

	staleRelease, err := locker.Acquire(ctx, "stats:owner@example.com")
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	clock.Advance(2 * time.Minute)
	release, err := locker.Acquire(ctx, "stats:owner@example.com")
	if err != nil {
		t.Fatalf("expected takeover of expired lease, got %v", err)
	}

	// the stale holder must not drop the new holder's lease
	staleRelease(ctx)
	if _, err := locker.Acquire(ctx, "stats:owner@example.com"); !errors.Is(err, ErrHeld) {
		t.Fatalf("expected lease to still be held, got %v", err)
	}
	release(ctx)
}

func TestNone_NeverBlocks(t *testing.T) {
	locker, closeFn, err := New(config.LeaseConfig{Backend: config.LeaseNone}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer closeFn()

	for i := 0; i < 3; i++ {
		if _, err := locker.Acquire(context.Background(), "sync:x"); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
}
