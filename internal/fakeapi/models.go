package fakeapi

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string          `json:"_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Category      string          `json:"category,omitempty"`
	Colors        []Color         `json:"colors"`
}

type Color struct {
	Name   string   `json:"name"`
	Hex    string   `json:"hex"`
	Images []string `json:"images,omitempty"`
	Sizes  []Size   `json:"sizes,omitempty"`
}

type Size struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type Banner struct {
	ID    string `json:"_id"`
	Title string `json:"title,omitempty"`
	Image string `json:"image"`
	Link  string `json:"link,omitempty"`
}

type Blog struct {
	ID          string    `json:"_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

type SelectedColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type Selection struct {
	Size  string        `json:"selectedSize,omitempty"`
	Color SelectedColor `json:"selectedColor"`
	Image string        `json:"selectedImage,omitempty"`
}

func (s Selection) key(productID string) string {
	return productID + "|" + strings.ToLower(strings.TrimSpace(s.Size)) + "|" + strings.ToLower(strings.TrimSpace(s.Color.Name))
}

type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	Selection
}

type appliedDiscount struct {
	Code   string          `json:"code"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

type cartState struct {
	lines    []CartLine
	discount *appliedDiscount
}

type WishlistItem struct {
	ProductID string          `json:"productId"`
	Price     decimal.Decimal `json:"price"`
	AddedAt   time.Time       `json:"addedAt"`
	Product   *Product        `json:"product,omitempty"`
	Selection
}

type wishlist struct {
	id    string
	items []WishlistItem
}

type Address struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"addressLine1"`
	Line2      string `json:"addressLine2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"pincode"`
	Country    string `json:"country"`
}

type Order struct {
	ID              string          `json:"_id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          string          `json:"userId"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	Items           []CartLine      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress Address         `json:"shippingAddress"`
	CancelReason    string          `json:"cancelReason,omitempty"`
	ReturnReason    string          `json:"returnReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type Payment struct {
	OrderID           string          `json:"orderId"`
	ProviderOrderID   string          `json:"providerOrderId"`
	ProviderPaymentID string          `json:"providerPaymentId,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	FailureReason     string          `json:"failureReason,omitempty"`
}

type user struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`

	// argon2id encoding; plaintext is never kept.
	passwordHash string
}
