package types

import "strings"

// Color is a named product color variant.
type Color struct {
	Name string `json:"name" validate:"omitempty,notblank"`
	Hex  string `json:"hex" validate:"omitempty,hexcolor"`
}

// IsZero reports whether no color was selected.
func (c Color) IsZero() bool {
	return strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Hex) == ""
}

// Selection is the size/color/image a shopper picked for a product. Cart and
// wishlist lines carry the same selection so moving between them is lossless.
type Selection struct {
	Size  string `json:"selectedSize,omitempty"`
	Color Color  `json:"selectedColor"`
	Image string `json:"selectedImage,omitempty"`
}

// LineKey identifies a cart line: the same product in a different size or
// color is a different line. Comparison ignores case and surrounding space.
type LineKey struct {
	ProductID string
	Size      string
	Color     string
}

func (s Selection) Key(productID string) LineKey {
	return LineKey{
		ProductID: strings.TrimSpace(productID),
		Size:      strings.ToLower(strings.TrimSpace(s.Size)),
		Color:     strings.ToLower(strings.TrimSpace(s.Color.Name)),
	}
}
