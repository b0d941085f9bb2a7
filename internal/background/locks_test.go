package background

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryLockerSerializesPerSource(t *testing.T) {
	locker := NewMemoryLocker(time.Minute)
	ctx := context.Background()

	if err := locker.Acquire(ctx, "indeed"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := locker.Acquire(ctx, "indeed"); !errors.Is(err, ErrSourceBusy) {
		t.Errorf("second acquire = %v, want ErrSourceBusy", err)
	}

	// Other sources are independent
	if err := locker.Acquire(ctx, "remoteok"); err != nil {
		t.Errorf("acquire on other source: %v", err)
	}

	if err := locker.Release(ctx, "indeed"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := locker.Acquire(ctx, "indeed"); err != nil {
		t.Errorf("acquire after release: %v", err)
	}
}

func TestMemoryLockerExpiresStaleLocks(t *testing.T) {
	locker := NewMemoryLocker(time.Minute).(*memoryLocker)
	now := time.Now()
	locker.clock = func() time.Time { return now }

	ctx := context.Background()
	if err := locker.Acquire(ctx, "indeed"); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Still held just before the TTL
	locker.clock = func() time.Time { return now.Add(59 * time.Second) }
	if err := locker.Acquire(ctx, "indeed"); !errors.Is(err, ErrSourceBusy) {
		t.Errorf("acquire before expiry = %v, want ErrSourceBusy", err)
	}

	// A crashed holder's lock frees itself after the TTL
	locker.clock = func() time.Time { return now.Add(61 * time.Second) }
	if err := locker.Acquire(ctx, "indeed"); err != nil {
		t.Errorf("acquire after expiry: %v", err)
	}
}
