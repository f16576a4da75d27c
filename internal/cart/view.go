package cart

import (
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// LineView is a cart line ready for display.
type LineView struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Size      string          `json:"size,omitempty"`
	Color     types.Color     `json:"color"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// DiscountBanner is shown while a discount is applied.
type DiscountBanner struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

// View is the one rendering of the cart used by every page.
type View struct {
	Lines          []LineView      `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"itemCount"`
	Discount       *DiscountBanner `json:"discount,omitempty"`
	Empty          bool            `json:"empty"`
	Loading        bool            `json:"loading"`
	Error          string          `json:"error,omitempty"`
}

func (s *Store) View() View {
	return NewView(s.State())
}

func NewView(st State) View {
	lines := make([]LineView, 0, len(st.Items))
	for _, item := range st.Items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		lines = append(lines, LineView{
			ProductID: item.ProductID,
			Name:      name,
			Size:      item.Size,
			Color:     item.Color,
			Image:     item.Image,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			LineTotal: item.LineTotal,
		})
	}
	v := View{
		Lines:          lines,
		Subtotal:       st.Totals.Subtotal,
		DiscountAmount: st.Totals.DiscountAmount,
		Total:          st.Totals.Total,
		ItemCount:      st.Totals.ItemCount,
		Empty:          len(lines) == 0,
		Loading:        st.Status == StatusLoading,
		Error:          st.Err,
	}
	if st.Discount != nil && st.Discount.Code != "" {
		amount := st.Discount.Amount
		if !st.Totals.DiscountAmount.IsZero() {
			amount = st.Totals.DiscountAmount
		}
		v.Discount = &DiscountBanner{Code: st.Discount.Code, Amount: amount}
	}
	return v
}
