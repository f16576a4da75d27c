package payment

import (
	"github.com/shopspring/decimal"
)

// Initiation is what the API returns when a payment is started for an order.
type Initiation struct {
	OrderID         string          `json:"orderId"`
	ProviderOrderID string          `json:"providerOrderId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Key             string          `json:"key,omitempty"`
}

// Callback carries the provider identifiers handed to the client on success.
type Callback struct {
	ProviderOrderID   string `json:"providerOrderId" validate:"required"`
	ProviderPaymentID string `json:"providerPaymentId" validate:"required"`
	Signature         string `json:"signature" validate:"required"`
}

// Details is the API's record of a payment.
type Details struct {
	OrderID           string          `json:"orderId"`
	ProviderOrderID   string          `json:"providerOrderId"`
	ProviderPaymentID string          `json:"providerPaymentId,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	FailureReason     string          `json:"failureReason,omitempty"`
}

type callbackPayload struct {
	OrderID string `json:"orderId"`
	Callback
}

type failurePayload struct {
	OrderID         string `json:"orderId"`
	ProviderOrderID string `json:"providerOrderId,omitempty"`
	Reason          string `json:"reason"`
}
