package cart

import (
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// Item is one cart line. Lines are unique per product, size and color.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	types.Selection
}

func (i Item) Key() types.LineKey {
	return i.Selection.Key(i.ProductID)
}

// AppliedDiscount is the last discount the server confirmed on the cart.
type AppliedDiscount struct {
	Code   string          `json:"code"`
	Type   string          `json:"type,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"itemCount"`
}

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// State is the cart as the client currently believes it to be.
type State struct {
	Items    []Item           `json:"items"`
	Totals   Totals           `json:"totals"`
	Discount *AppliedDiscount `json:"appliedDiscount,omitempty"`
	Status   Status           `json:"status"`
	Err      string           `json:"error,omitempty"`
}

func (s State) clone() State {
	out := s
	out.Items = append([]Item(nil), s.Items...)
	if s.Discount != nil {
		d := *s.Discount
		out.Discount = &d
	}
	return out
}

func (s State) find(key types.LineKey) int {
	for i, item := range s.Items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// recompute derives local totals for optimistic states. The server's totals
// replace these on the next fetch.
func (s *State) recompute() {
	subtotal := decimal.Zero
	count := 0
	for i := range s.Items {
		s.Items[i].LineTotal = s.Items[i].Price.Mul(decimal.NewFromInt(int64(s.Items[i].Quantity)))
		subtotal = subtotal.Add(s.Items[i].LineTotal)
		count += s.Items[i].Quantity
	}
	discount := decimal.Zero
	if s.Discount != nil {
		discount = decimal.Min(s.Discount.Amount, subtotal)
	}
	s.Totals = Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount),
		ItemCount:      count,
	}
}

// AddInput is the add-to-cart request.
type AddInput struct {
	ProductID string          `json:"productId" validate:"required,notblank"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	Name      string          `json:"-"`
	Price     decimal.Decimal `json:"-"`
	types.Selection
}

// DiscountCheck is the outcome of validating a code without applying it.
type DiscountCheck struct {
	Valid   bool            `json:"valid"`
	Code    string          `json:"code"`
	Amount  decimal.Decimal `json:"discountAmount"`
	Message string          `json:"message,omitempty"`
}

// serverCart is the wire shape of GET /cart and /guest-cart/{id}.
type serverCart struct {
	Items           []Item           `json:"items"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	DiscountAmount  decimal.Decimal  `json:"discountAmount"`
	Total           decimal.Decimal  `json:"total"`
	ItemCount       int              `json:"itemCount"`
	AppliedDiscount *AppliedDiscount `json:"appliedDiscount"`
}

func (c serverCart) state() State {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	count := c.ItemCount
	if count == 0 {
		for _, item := range items {
			count += item.Quantity
		}
	}
	return State{
		Items: items,
		Totals: Totals{
			Subtotal:       c.Subtotal,
			DiscountAmount: c.DiscountAmount,
			Total:          c.Total,
			ItemCount:      count,
		},
		Discount: c.AppliedDiscount,
		Status:   StatusReady,
	}
}

type linePayload struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity,omitempty"`
	types.Selection
}
