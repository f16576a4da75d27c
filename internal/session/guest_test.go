package session

import (
	"context"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront/pkg/storage"
)

func TestIDIsStableAndPersisted(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	guest := NewGuest(store)

	first, err := guest.ID(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(first, "guest_") {
		t.Fatalf("unexpected id format %q", first)
	}
	second, _ := guest.ID(ctx)
	if first != second {
		t.Fatalf("expected stable id, got %q then %q", first, second)
	}

	stored, ok, _ := store.Get(ctx, storage.KeyGuestSessionID)
	if !ok || stored != first {
		t.Fatalf("expected id to be persisted, got %q", stored)
	}

	// a fresh manager over the same storage sees the same id
	if again, _ := NewGuest(store).ID(ctx); again != first {
		t.Fatalf("expected persisted id to be reused, got %q", again)
	}
}

func TestCurrentDoesNotGenerate(t *testing.T) {
	ctx := context.Background()
	guest := NewGuest(storage.NewMemory())
	if id, err := guest.Current(ctx); err != nil || id != "" {
		t.Fatalf("expected no id, got %q err=%v", id, err)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	guest := NewGuest(store)
	first, _ := guest.ID(ctx)

	if err := guest.Clear(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id, _ := guest.Current(ctx); id != "" {
		t.Fatalf("expected cleared id, got %q", id)
	}
	if next, _ := guest.ID(ctx); next == first {
		t.Fatalf("expected a new id after clear")
	}
}
