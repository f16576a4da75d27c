package wishlist

import (
	"context"

	"github.com/angelmondragon/storefront/internal/catalog"
	"golang.org/x/sync/errgroup"
)

// enrich fills in product detail for items the server did not embed. A failed
// lookup degrades that item to a placeholder; the rest are unaffected.
func (s *Store) enrich(ctx context.Context, items []Item) {
	g := errgroup.Group{}
	g.SetLimit(s.concurrency)
	for i := range items {
		if items[i].Product != nil {
			continue
		}
		item := &items[i]
		g.Go(func() error {
			product, err := s.products.Product(ctx, item.ProductID)
			if err != nil {
				s.logg.WarnErr(s.logg.WithField(ctx, "product_id", item.ProductID), "wishlist.enrich_failed", err)
				item.Product = placeholder(item)
				item.Unavailable = true
				return nil
			}
			item.Product = product
			return nil
		})
	}
	_ = g.Wait()
}

func placeholder(item *Item) *catalog.Product {
	return &catalog.Product{
		ID:    item.ProductID,
		Name:  UnavailableName,
		Price: item.Price,
	}
}
