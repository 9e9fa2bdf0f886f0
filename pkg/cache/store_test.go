package cache

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestMemoryStore_GetMiss(t *testing.T) {
	store := NewMemoryStore(nil)

	_, err := store.Get(context.Background(), "GET /missing")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryStore_SetGet(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	ctx := context.Background()

	entry := &Entry{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"image/png"}},
		Body:       []byte("png"),
		StoredAt:   clock.Now(),
		TTL:        time.Hour,
	}
	if err := store.Set(ctx, "k", entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Mutating the caller's entry must not reach the store.
	entry.Header.Set("Content-Type", "text/plain")

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Header.Get("Content-Type") != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got.Header.Get("Content-Type"))
	}
}

func TestMemoryStore_SetNil(t *testing.T) {
	if err := NewMemoryStore(nil).Set(context.Background(), "k", nil); err == nil {
		t.Error("Set(nil) should fail")
	}
}

func TestMemoryStore_ExpiredEntryIsRemoved(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	ctx := context.Background()

	_ = store.Set(ctx, "k", &Entry{StoredAt: clock.Now(), TTL: time.Minute})
	clock.Advance(time.Minute)

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	ctx := context.Background()

	_ = store.Set(ctx, "old", &Entry{StoredAt: clock.Now(), TTL: time.Minute})
	clock.Advance(30 * time.Second)
	_ = store.Set(ctx, "new", &Entry{StoredAt: clock.Now(), TTL: time.Minute})
	clock.Advance(45 * time.Second)

	if removed := store.Sweep(); removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
	if _, err := store.Get(ctx, "new"); err != nil {
		t.Errorf("Get(new) error = %v", err)
	}
}

func TestMemoryStore_RunJanitor(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)

	_ = store.Set(context.Background(), "k", &Entry{StoredAt: clock.Now(), TTL: time.Minute})
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.RunJanitor(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for store.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if store.Len() != 0 {
		t.Errorf("Len() = %d after janitor, want 0", store.Len())
	}
}
