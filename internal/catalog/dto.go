package catalog

import (
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/shopspring/decimal"
)

// Product is the read-only product projection served by the API.
type Product struct {
	ID            string          `json:"_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Category      string          `json:"category,omitempty"`
	Subcategory   string          `json:"subcategory,omitempty"`
	Colors        []ColorVariant  `json:"colors"`
	Rating        float64         `json:"rating,omitempty"`
	ReviewCount   int             `json:"numReviews,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
}

// ColorVariant carries its own image set and per-size stock.
type ColorVariant struct {
	Name   string      `json:"name"`
	Hex    string      `json:"hex"`
	Images []string    `json:"images"`
	Sizes  []SizeStock `json:"sizes"`
}

type SizeStock struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// Variant looks a color up by name, case-insensitively.
func (p *Product) Variant(color string) (*ColorVariant, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Colors {
		if strings.EqualFold(p.Colors[i].Name, strings.TrimSpace(color)) {
			return &p.Colors[i], true
		}
	}
	return nil, false
}

// StockFor returns the units available for a color/size; zero when unknown.
func (p *Product) StockFor(color, size string) int {
	variant, ok := p.Variant(color)
	if !ok {
		return 0
	}
	for _, s := range variant.Sizes {
		if strings.EqualFold(s.Size, strings.TrimSpace(size)) {
			return s.Stock
		}
	}
	return 0
}

// InStock reports whether any variant has any size in stock.
func (p *Product) InStock() bool {
	if p == nil {
		return false
	}
	for _, c := range p.Colors {
		for _, s := range c.Sizes {
			if s.Stock > 0 {
				return true
			}
		}
	}
	return false
}

// PrimaryImage returns the first image of the named color, falling back to the
// first image of any color.
func (p *Product) PrimaryImage(color string) string {
	if variant, ok := p.Variant(color); ok && len(variant.Images) > 0 {
		return variant.Images[0]
	}
	if p == nil {
		return ""
	}
	for _, c := range p.Colors {
		if len(c.Images) > 0 {
			return c.Images[0]
		}
	}
	return ""
}

// DiscountPercent is the whole-number markdown from the original price.
func (p *Product) DiscountPercent() int {
	if p == nil || !p.OriginalPrice.IsPositive() || !p.Price.LessThan(p.OriginalPrice) {
		return 0
	}
	off := p.OriginalPrice.Sub(p.Price).Div(p.OriginalPrice).Mul(decimal.NewFromInt(100))
	return int(off.Round(0).IntPart())
}

type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	Image string `json:"image,omitempty"`
}

type Subcategory struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Slug     string `json:"slug,omitempty"`
	Category string `json:"category,omitempty"`
	Image    string `json:"image,omitempty"`
}

// ProductPage is one page of a listing or search.
type ProductPage struct {
	Products   []Product       `json:"products"`
	Pagination pagination.Meta `json:"pagination"`
}

// ListQuery filters a product listing.
type ListQuery struct {
	Category    string
	Subcategory string
	Sort        string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Page        pagination.Params
}

type Banner struct {
	ID       string `json:"_id"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Image    string `json:"image"`
	Link     string `json:"link,omitempty"`
	Position int    `json:"position,omitempty"`
}

type Blog struct {
	ID          string    `json:"_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Content     string    `json:"content,omitempty"`
	CoverImage  string    `json:"coverImage,omitempty"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

type BlogPage struct {
	Blogs      []Blog          `json:"blogs"`
	Pagination pagination.Meta `json:"pagination"`
}
