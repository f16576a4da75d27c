package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/storage"
)

// DefaultWidgetTTL is how long recommendation and deal widgets stay cached.
const DefaultWidgetTTL = time.Hour

const widgetKeyPrefix = "widget:"

// WidgetCache stores product widgets in an expiring store. Cache errors are
// logged and treated as misses.
type WidgetCache struct {
	store storage.ExpiringStore
	ttl   time.Duration
	logg  *logger.Logger
}

func NewWidgetCache(store storage.ExpiringStore, ttl time.Duration, logg *logger.Logger) *WidgetCache {
	if ttl <= 0 {
		ttl = DefaultWidgetTTL
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &WidgetCache{store: store, ttl: ttl, logg: logg}
}

func (c *WidgetCache) Load(ctx context.Context, key string) ([]Product, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	raw, ok, err := c.store.GetFresh(ctx, widgetKeyPrefix+key)
	if err != nil {
		c.logg.WarnErr(c.logg.WithField(ctx, "widget", key), "catalog.widget_cache_read_failed", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var products []Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		c.logg.WarnErr(c.logg.WithField(ctx, "widget", key), "catalog.widget_cache_corrupt", err)
		return nil, false
	}
	return products, true
}

func (c *WidgetCache) Store(ctx context.Context, key string, products []Product) {
	if c == nil || c.store == nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		c.logg.WarnErr(ctx, "catalog.widget_cache_encode_failed", err)
		return
	}
	if err := c.store.SetWithExpiry(ctx, widgetKeyPrefix+key, string(raw), c.ttl); err != nil {
		c.logg.WarnErr(c.logg.WithField(ctx, "widget", key), "catalog.widget_cache_write_failed", err)
	}
}
