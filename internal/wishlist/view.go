package wishlist

import (
	"time"

	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

type LineView struct {
	ProductID       string          `json:"productId"`
	Name            string          `json:"name"`
	Image           string          `json:"image,omitempty"`
	Price           decimal.Decimal `json:"price"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	DiscountPercent int             `json:"discountPercent,omitempty"`
	Size            string          `json:"size,omitempty"`
	Color           types.Color     `json:"color"`
	InStock         bool            `json:"inStock"`
	Unavailable     bool            `json:"unavailable"`
	AddedAt         time.Time       `json:"addedAt"`
}

// View is the one rendering of the wishlist used by every page.
type View struct {
	Lines   []LineView `json:"lines"`
	Count   int        `json:"count"`
	Empty   bool       `json:"empty"`
	Loading bool       `json:"loading"`
	Error   string     `json:"error,omitempty"`
}

func (s *Store) View() View {
	return NewView(s.State())
}

func NewView(st State) View {
	lines := make([]LineView, 0, len(st.Items))
	for _, item := range st.Items {
		line := LineView{
			ProductID:   item.ProductID,
			Name:        item.ProductID,
			Image:       item.Image,
			Price:       item.Price,
			Size:        item.Size,
			Color:       item.Color,
			Unavailable: item.Unavailable,
			AddedAt:     item.AddedAt,
		}
		if p := item.Product; p != nil {
			line.Name = p.Name
			if !item.Unavailable {
				line.Price = p.Price
				line.OriginalPrice = p.OriginalPrice
				line.DiscountPercent = p.DiscountPercent()
				line.InStock = p.InStock()
			}
			if line.Image == "" {
				line.Image = p.PrimaryImage(item.Color.Name)
			}
		}
		lines = append(lines, line)
	}
	return View{
		Lines:   lines,
		Count:   len(lines),
		Empty:   len(lines) == 0,
		Loading: st.Status == StatusLoading,
		Error:   st.Err,
	}
}
