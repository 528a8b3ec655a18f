package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupRedisService(t *testing.T) (*RedisService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRedisService("redis://"+mr.Addr(), testLogger())
	if err != nil {
		t.Fatalf("Failed to create Redis service: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedisService_Ping(t *testing.T) {
	r, mr := setupRedisService(t)
	ctx := context.Background()

	if err := r.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if err := r.WaitForConnection(ctx); err != nil {
		t.Fatalf("WaitForConnection failed: %v", err)
	}

	mr.Close()
	if err := r.Ping(ctx); err == nil {
		t.Error("Expected ping to fail after server shutdown")
	}
}

func TestRedisService_BadURL(t *testing.T) {
	if _, err := NewRedisService("not a url", testLogger()); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestRedisService_Lock(t *testing.T) {
	r, mr := setupRedisService(t)
	ctx := context.Background()
	key := "game-lock:test"

	if err := r.AcquireLock(ctx, key, "owner-a", 30*time.Second); err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}
	if err := r.AcquireLock(ctx, key, "owner-b", 30*time.Second); err != ErrLockHeld {
		t.Fatalf("Expected ErrLockHeld, got %v", err)
	}
	if ttl := mr.TTL(key); ttl != 30*time.Second {
		t.Errorf("Expected 30s TTL, got %v", ttl)
	}

	released, err := r.ReleaseLock(ctx, key, "owner-b")
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if released {
		t.Error("Lock released by a non-owner")
	}

	released, err = r.ReleaseLock(ctx, key, "owner-a")
	if err != nil || !released {
		t.Fatalf("Owner release failed: released=%v err=%v", released, err)
	}
	if mr.Exists(key) {
		t.Error("Lock key still present after release")
	}
}

func TestRedisService_LockExpiry(t *testing.T) {
	r, mr := setupRedisService(t)
	ctx := context.Background()
	key := "game-lock:expiry"

	if err := r.AcquireLock(ctx, key, "owner-a", time.Second); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	mr.FastForward(2 * time.Second)

	if err := r.AcquireLock(ctx, key, "owner-b", time.Second); err != nil {
		t.Fatalf("Acquire after expiry failed: %v", err)
	}
	if released, _ := r.ReleaseLock(ctx, key, "owner-a"); released {
		t.Error("Stale owner released a re-acquired lock")
	}
}

func TestRedisService_RefreshLock(t *testing.T) {
	r, mr := setupRedisService(t)
	ctx := context.Background()
	key := "game-lock:refresh"

	if err := r.AcquireLock(ctx, key, "owner-a", time.Second); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	mr.FastForward(800 * time.Millisecond)

	held, err := r.RefreshLock(ctx, key, "owner-a", time.Second)
	if err != nil || !held {
		t.Fatalf("Owner refresh failed: held=%v err=%v", held, err)
	}
	mr.FastForward(800 * time.Millisecond)
	if !mr.Exists(key) {
		t.Fatal("Refreshed lock expired early")
	}

	if held, _ := r.RefreshLock(ctx, key, "owner-b", time.Minute); held {
		t.Error("Non-owner refreshed the lock")
	}
	if ttl := mr.TTL(key); ttl > time.Second {
		t.Errorf("Non-owner refresh changed TTL to %v", ttl)
	}

	mr.FastForward(time.Second)
	if held, _ := r.RefreshLock(ctx, key, "owner-a", time.Second); held {
		t.Error("Refresh revived an expired lock")
	}
}
