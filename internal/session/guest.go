// Package session manages the anonymous guest-cart session id kept in local
// storage while the shopper is not logged in.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/google/uuid"
)

const idPrefix = "guest_"

// Guest hands out a stable guest session id, generating and persisting one on
// first use.
type Guest struct {
	store storage.Store
	newID func() string
	mu    sync.Mutex
}

func NewGuest(store storage.Store) *Guest {
	return &Guest{
		store: store,
		newID: func() string { return idPrefix + uuid.NewString() },
	}
}

// ID returns the current guest session id, creating it when absent.
func (g *Guest) ID(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	current, err := g.current(ctx)
	if err != nil || current != "" {
		return current, err
	}
	id := g.newID()
	if err := g.store.Set(ctx, storage.KeyGuestSessionID, id); err != nil {
		return "", fmt.Errorf("persisting guest session id: %w", err)
	}
	return id, nil
}

// Current returns the stored id without generating one; empty means none.
func (g *Guest) Current(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current(ctx)
}

// Clear forgets the guest session, e.g. after it was merged into an account.
func (g *Guest) Clear(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Remove(ctx, storage.KeyGuestSessionID); err != nil {
		return fmt.Errorf("clearing guest session id: %w", err)
	}
	return nil
}

func (g *Guest) current(ctx context.Context) (string, error) {
	value, ok, err := g.store.Get(ctx, storage.KeyGuestSessionID)
	if err != nil {
		return "", fmt.Errorf("reading guest session id: %w", err)
	}
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(value), nil
}
