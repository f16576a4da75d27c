package wishlist

import (
	"time"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// UnavailableName is shown for items whose product could not be loaded.
const UnavailableName = "Product Unavailable"

// Item is a saved product with the selection it was saved with.
type Item struct {
	ProductID   string           `json:"productId"`
	Price       decimal.Decimal  `json:"price"`
	AddedAt     time.Time        `json:"addedAt"`
	Product     *catalog.Product `json:"product,omitempty"`
	Unavailable bool             `json:"unavailable,omitempty"`
	types.Selection
}

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

type State struct {
	ID     string `json:"id,omitempty"`
	Items  []Item `json:"items"`
	Status Status `json:"status"`
	Err    string `json:"error,omitempty"`
}

func (s State) clone() State {
	out := s
	out.Items = append([]Item(nil), s.Items...)
	return out
}

func (s State) find(productID string) int {
	for i, item := range s.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddInput saves a product, optionally with the shopper's current selection.
type AddInput struct {
	ProductID string          `json:"productId" validate:"required,notblank"`
	Price     decimal.Decimal `json:"price"`
	types.Selection
}

// ToggleResult reports what the server actually did.
type ToggleResult struct {
	Action     string `json:"action"`
	InWishlist bool   `json:"inWishlist"`
}

const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// MoveSummary counts the outcome of moving every item to the cart.
type MoveSummary struct {
	Moved  int               `json:"moved"`
	Failed int               `json:"failed"`
	Errors map[string]string `json:"errors,omitempty"`
}

type serverWishlist struct {
	ID    string `json:"_id"`
	Items []Item `json:"items"`
}

type movePayload struct {
	Quantity int `json:"quantity"`
	types.Selection
}
