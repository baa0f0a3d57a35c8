package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestSaveAndLookup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "hash-1", "user-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}

	userID, err := store.Lookup(ctx, "hash-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("lookup = %q, want user-1", userID)
	}
}

func TestLookupUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	userID, err := store.Lookup(context.Background(), "never-saved")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if userID != "" {
		t.Errorf("lookup = %q, want empty", userID)
	}
}

func TestRevoke(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "hash-1", "user-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Revoke(ctx, "hash-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	userID, err := store.Lookup(ctx, "hash-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if userID != "" {
		t.Errorf("revoked session still resolves to %q", userID)
	}
}

func TestSessionExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "hash-1", "user-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	userID, err := store.Lookup(ctx, "hash-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if userID != "" {
		t.Errorf("expired session still resolves to %q", userID)
	}
}

func TestSaveExpiredDeadlineIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "hash-1", "user-1", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if userID, _ := store.Lookup(ctx, "hash-1"); userID != "" {
		t.Errorf("expired save still resolves to %q", userID)
	}
}
