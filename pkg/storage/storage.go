// Package storage is the client's local storage: a small string key/value
// store shared by every client instance on the machine. It holds the auth
// token, the guest cart session id and short-lived response caches.
package storage

import (
	"context"
	"sync"
	"time"
)

const (
	KeyToken          = "token"
	KeyGuestSessionID = "guestSessionId"
)

// Event describes a change made to a key by another client instance.
type Event struct {
	Key      string
	OldValue string
	NewValue string
	Removed  bool
}

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Subscribe(fn func(Event)) (unsubscribe func())
}

// ExpiringStore holds values that silently disappear after a TTL.
type ExpiringStore interface {
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error
	GetFresh(ctx context.Context, key string) (string, bool, error)
}

// subscribers is embedded by implementations to fan events out to listeners.
type subscribers struct {
	mu     sync.RWMutex
	nextID int
	fns    map[int]func(Event)
}

func (s *subscribers) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = map[int]func(Event){}
	}
	id := s.nextID
	s.nextID++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.fns, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) emit(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}
