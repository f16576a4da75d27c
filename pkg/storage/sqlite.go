package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one persisted key. Entries with ExpiresAt set are caches and are
// never reported as storage events.
type Entry struct {
	Key       string     `gorm:"column:storage_key;primaryKey"`
	Value     string     `gorm:"column:value;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (Entry) TableName() string { return "local_storage" }

// SQLite persists local storage in a database file that several client
// processes can share.
type SQLite struct {
	subscribers
	db   *gorm.DB
	logg *logger.Logger
	now  func() time.Time

	mu    sync.Mutex
	known map[string]string
}

// NewSQLite migrates the storage table and snapshots the current values so the
// first Poll only reports changes made after construction.
func NewSQLite(ctx context.Context, client *db.Client, logg *logger.Logger) (*SQLite, error) {
	if client == nil {
		return nil, errors.New("storage database is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	conn := client.DB()
	if err := conn.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrating local storage: %w", err)
	}
	s := &SQLite{db: conn, logg: logg, now: time.Now}
	snapshot, err := s.persistent(ctx)
	if err != nil {
		return nil, err
	}
	s.known = snapshot
	return s, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	if entry.ExpiresAt != nil && !s.now().Before(*entry.ExpiresAt) {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if err := s.upsert(ctx, Entry{Key: key, Value: value, UpdatedAt: s.now()}); err != nil {
		return err
	}
	s.mu.Lock()
	s.known[key] = value
	s.mu.Unlock()
	return nil
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	s.mu.Lock()
	delete(s.known, key)
	s.mu.Unlock()
	return nil
}

func (s *SQLite) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	now := s.now()
	expires := now.Add(ttl)
	return s.upsert(ctx, Entry{Key: key, Value: value, ExpiresAt: &expires, UpdatedAt: now})
}

func (s *SQLite) GetFresh(ctx context.Context, key string) (string, bool, error) {
	return s.Get(ctx, key)
}

// PurgeExpired deletes cache entries whose TTL elapsed.
func (s *SQLite) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).Delete(&Entry{})
	return res.RowsAffected, res.Error
}

// Poll diffs the database against the last known values and emits an Event
// for every key another process changed. Last write wins.
func (s *SQLite) Poll(ctx context.Context) error {
	current, err := s.persistent(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	var events []Event
	for key, value := range current {
		old, ok := s.known[key]
		if !ok || old != value {
			events = append(events, Event{Key: key, OldValue: old, NewValue: value})
		}
	}
	for key, old := range s.known {
		if _, ok := current[key]; !ok {
			events = append(events, Event{Key: key, OldValue: old, Removed: true})
		}
	}
	s.known = current
	s.mu.Unlock()

	for _, ev := range events {
		s.emit(ev)
	}
	return nil
}

// Watch polls until ctx is cancelled.
func (s *SQLite) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Poll(ctx); err != nil && ctx.Err() == nil {
				s.logg.WarnErr(ctx, "storage.poll_failed", err)
			}
			if _, err := s.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				s.logg.WarnErr(ctx, "storage.purge_failed", err)
			}
		}
	}
}

func (s *SQLite) upsert(ctx context.Context, entry Entry) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("writing %s: %w", entry.Key, err)
	}
	return nil
}

func (s *SQLite) persistent(ctx context.Context) (map[string]string, error) {
	var entries []Entry
	if err := s.db.WithContext(ctx).Where("expires_at IS NULL").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("listing local storage: %w", err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}
