package payment

import (
	"context"
	"sync"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// Request is everything the hosted checkout needs to open.
type Request struct {
	OrderID         string          `json:"orderId"`
	ProviderOrderID string          `json:"providerOrderId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Key             string          `json:"key,omitempty"`
	MerchantName    string          `json:"merchantName,omitempty"`
	Prefill         Prefill         `json:"prefill"`
}

type Prefill struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"contact,omitempty"`
}

type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeDismissed OutcomeKind = "dismissed"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome is what the hosted checkout reported.
type Outcome struct {
	Kind     OutcomeKind `json:"status" validate:"required,oneof=success dismissed failed"`
	Callback Callback    `json:"callback" validate:"-"`
	Reason   string      `json:"reason,omitempty"`
}

// Provider opens the hosted checkout and blocks until the shopper finishes,
// dismisses it, or ctx ends.
type Provider interface {
	Open(ctx context.Context, req Request) (Outcome, error)
}

type ProviderFunc func(ctx context.Context, req Request) (Outcome, error)

func (f ProviderFunc) Open(ctx context.Context, req Request) (Outcome, error) {
	return f(ctx, req)
}

// CallbackProvider is a Provider whose outcomes arrive out of band, e.g. from
// a browser posting the provider's callback. Open waits for Deliver with the
// same provider order id.
type CallbackProvider struct {
	mu      sync.Mutex
	pending map[string]chan Outcome
}

func NewCallbackProvider() *CallbackProvider {
	return &CallbackProvider{pending: map[string]chan Outcome{}}
}

func (p *CallbackProvider) Open(ctx context.Context, req Request) (Outcome, error) {
	ch := make(chan Outcome, 1)
	p.mu.Lock()
	p.pending[req.ProviderOrderID] = ch
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, req.ProviderOrderID)
		p.mu.Unlock()
	}()

	select {
	case out := <-ch:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeNetwork, ctx.Err(), "payment window closed")
	}
}

// Deliver hands an outcome to the waiting Open call. It reports false when
// nothing is waiting for providerOrderID.
func (p *CallbackProvider) Deliver(providerOrderID string, out Outcome) bool {
	p.mu.Lock()
	ch, ok := p.pending[providerOrderID]
	p.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- out:
		return true
	default:
		return false
	}
}

// Waiting reports whether an Open call is pending for providerOrderID.
func (p *CallbackProvider) Waiting(providerOrderID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pending[providerOrderID]
	return ok
}
