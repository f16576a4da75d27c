package orders

import (
	"time"

	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// Status is the order lifecycle as reported by the API.
type Status string

const (
	StatusPending         Status = "pending"
	StatusConfirmed       Status = "confirmed"
	StatusProcessing      Status = "processing"
	StatusShipped         Status = "shipped"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
	StatusReturnRequested Status = "return_requested"
	StatusReturned        Status = "returned"
)

// Cancellable reports whether the shopper may still cancel.
func (s Status) Cancellable() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing:
		return true
	}
	return false
}

// Returnable reports whether a return can be requested.
func (s Status) Returnable() bool {
	return s == StatusDelivered
}

// PaymentMethod is how the shopper pays.
type PaymentMethod string

const (
	PaymentOnline         PaymentMethod = "online"
	PaymentCashOnDelivery PaymentMethod = "cod"
)

type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	types.Selection
}

// Order is the client's read projection of a server order.
type Order struct {
	ID              string          `json:"_id"`
	OrderNumber     string          `json:"orderNumber"`
	Status          Status          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress types.Address   `json:"shippingAddress"`
	CancelReason    string          `json:"cancelReason,omitempty"`
	ReturnReason    string          `json:"returnReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// CreateInput places an order from the current server cart.
type CreateInput struct {
	ShippingAddress types.Address `json:"shippingAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" validate:"required,oneof=online cod"`
	Notes           string        `json:"notes,omitempty" validate:"max=500"`
}

type ListQuery struct {
	Status Status
	Page   pagination.Params
}

type Page struct {
	Orders     []Order         `json:"orders"`
	Pagination pagination.Meta `json:"pagination"`
}

type Stats struct {
	TotalOrders int             `json:"totalOrders"`
	ByStatus    map[Status]int  `json:"byStatus"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
}

// ReturnInput asks for a return, optionally limited to some products.
type ReturnInput struct {
	Reason     string   `json:"reason" validate:"notblank,max=500"`
	ProductIDs []string `json:"items,omitempty"`
}
