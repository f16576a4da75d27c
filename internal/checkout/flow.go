// Package checkout drives one shopper from the address form to the order
// confirmation page: order creation, payment, verification and cart clear.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/payment"
	stock "github.com/angelmondragon/storefront/pkg/checkout"
	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/angelmondragon/storefront/pkg/validate"
)

type State string

const reasonSuperseded = "superseded by a new checkout attempt"

const (
	StateCollecting            State = "collecting"
	StateOrderCreated          State = "order_created"
	StatePaymentInitiated      State = "payment_initiated"
	StatePaymentAuthorized     State = "payment_authorized"
	StateVerificationAttempted State = "verification_attempted"
	StateCartCleared           State = "cart_cleared"
	StateRedirected            State = "redirected"
	StateFailed                State = "failed"
)

// Editable reports whether the checkout form accepts a new submission.
func (s State) Editable() bool {
	return s == StateCollecting || s == StateFailed || s == StateRedirected
}

// SuccessPath is the confirmation route for an order.
func SuccessPath(orderID string) string {
	return "/order-success/" + orderID
}

type CartPort interface {
	State() cart.State
	Refresh(ctx context.Context) error
	Clear(ctx context.Context) pkgerrors.Result[cart.State]
}

type OrderPort interface {
	Create(ctx context.Context, input orders.CreateInput) pkgerrors.Result[orders.Order]
}

type PaymentPort interface {
	Initiate(ctx context.Context, orderID string) (*payment.Initiation, error)
	Verify(ctx context.Context, orderID string, cb payment.Callback) error
	NotifySuccess(ctx context.Context, orderID string, cb payment.Callback) error
	ReportFailure(ctx context.Context, orderID, providerOrderID, reason string) error
}

type ProductSource interface {
	Product(ctx context.Context, id string) (*catalog.Product, error)
}

type Params struct {
	Cart     CartPort
	Orders   OrderPort
	Payments PaymentPort
	// Products enables a stock check before the order is placed.
	Products ProductSource
	Config   config.PaymentConfig
	Logger   *logger.Logger
}

// Input is the submitted checkout form.
type Input struct {
	ShippingAddress types.Address        `json:"shippingAddress"`
	PaymentMethod   orders.PaymentMethod `json:"paymentMethod" validate:"required,oneof=online cod"`
	Email           string               `json:"email,omitempty" validate:"omitempty,email"`
	Notes           string               `json:"notes,omitempty" validate:"max=500"`
}

// Step is the result of Begin. Online payments return the provider request to
// open; cash on delivery finishes immediately with a confirmation.
type Step struct {
	OrderID      string           `json:"orderId"`
	OrderNumber  string           `json:"orderNumber"`
	Payment      *payment.Request `json:"payment,omitempty"`
	Confirmation *Confirmation    `json:"confirmation,omitempty"`
}

// Confirmation is where the shopper lands. Warnings list best-effort steps
// that failed after the payment was captured.
type Confirmation struct {
	OrderID       string               `json:"orderId"`
	OrderNumber   string               `json:"orderNumber"`
	PaymentMethod orders.PaymentMethod `json:"paymentMethod"`
	Redirect      string               `json:"redirect"`
	Verified      bool                 `json:"verified"`
	Warnings      []string             `json:"warnings,omitempty"`
}

type attempt struct {
	order      orders.Order
	initiation *payment.Initiation
}

// Flow is the checkout state machine for one shopper. A submission in flight
// blocks another until it settles.
type Flow struct {
	cart     CartPort
	orders   OrderPort
	payments PaymentPort
	products ProductSource
	cfg      config.PaymentConfig
	logg     *logger.Logger

	mu          sync.Mutex
	state       State
	busy        bool
	lastErr     string
	current     *attempt
	transitions []State
}

func NewFlow(p Params) (*Flow, error) {
	if p.Cart == nil || p.Orders == nil || p.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout requires cart, orders and payments")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Flow{
		cart:     p.Cart,
		orders:   p.Orders,
		payments: p.Payments,
		products: p.Products,
		cfg:      p.Config,
		logg:     logg,
		state:    StateCollecting,
	}, nil
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError is the message shown on the re-enabled form after a failure.
func (f *Flow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Transitions lists every state entered since the flow was created.
func (f *Flow) Transitions() []State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]State(nil), f.transitions...)
}

// Begin validates the form, places the order and starts the payment. A
// payment still pending from an earlier Begin (the shopper reloaded or closed
// the provider window without an outcome) is reported as failed first.
func (f *Flow) Begin(ctx context.Context, input Input) pkgerrors.Result[Step] {
	if err := f.acquire(func(s State) bool { return s.Editable() || s == StatePaymentInitiated }); err != nil {
		return pkgerrors.Fail[Step](err)
	}
	defer f.release()
	f.abandonPending(ctx)
	f.enter(ctx, StateCollecting)

	input.ShippingAddress = input.ShippingAddress.Normalized()
	input.Email = strings.TrimSpace(input.Email)
	if err := validate.Struct(input); err != nil {
		return pkgerrors.Fail[Step](f.fail(ctx, err, false))
	}
	if err := f.cart.Refresh(ctx); err != nil {
		return pkgerrors.Fail[Step](f.fail(ctx, err, false))
	}
	current := f.cart.State()
	if len(current.Items) == 0 {
		return pkgerrors.Fail[Step](f.fail(ctx, pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty"), false))
	}
	if err := f.checkStock(ctx, current.Items); err != nil {
		return pkgerrors.Fail[Step](f.fail(ctx, err, false))
	}

	created := f.orders.Create(ctx, orders.CreateInput{
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
	})
	if !created.OK {
		return pkgerrors.Fail[Step](f.fail(ctx, created.Err, true))
	}
	order := created.Data
	ctx = f.logg.WithOrderID(ctx, order.ID)
	f.setAttempt(&attempt{order: order})
	f.enter(ctx, StateOrderCreated)

	if input.PaymentMethod == orders.PaymentCashOnDelivery {
		conf := f.finish(ctx, order, false, nil)
		return pkgerrors.Ok(Step{OrderID: order.ID, OrderNumber: order.OrderNumber, Confirmation: &conf})
	}

	init, err := f.payments.Initiate(ctx, order.ID)
	if err != nil {
		return pkgerrors.Fail[Step](f.fail(ctx, err, true))
	}
	f.setAttempt(&attempt{order: order, initiation: init})
	f.enter(ctx, StatePaymentInitiated)

	req := payment.Request{
		OrderID:         order.ID,
		ProviderOrderID: init.ProviderOrderID,
		Amount:          init.Amount,
		Currency:        f.currency(init),
		Key:             firstNonEmpty(init.Key, f.cfg.ProviderKey),
		MerchantName:    f.cfg.MerchantName,
		Prefill: payment.Prefill{
			Name:  input.ShippingAddress.FullName,
			Email: input.Email,
			Phone: input.ShippingAddress.Phone,
		},
	}
	return pkgerrors.Ok(Step{OrderID: order.ID, OrderNumber: order.OrderNumber, Payment: &req})
}

// Complete applies the provider's outcome for the order started by Begin.
// Once the provider reports success the shopper is always sent to the
// confirmation page; verification and the success notice are best effort.
func (f *Flow) Complete(ctx context.Context, orderID string, outcome payment.Outcome) pkgerrors.Result[Confirmation] {
	if err := f.acquire(func(s State) bool { return s == StatePaymentInitiated }); err != nil {
		return pkgerrors.Fail[Confirmation](err)
	}
	defer f.release()

	f.mu.Lock()
	current := f.current
	f.mu.Unlock()
	if current == nil || current.order.ID != strings.TrimSpace(orderID) || current.initiation == nil {
		return pkgerrors.Fail[Confirmation](pkgerrors.New(pkgerrors.CodeConflict, "no payment is pending for this order"))
	}
	ctx = f.logg.WithOrderID(ctx, current.order.ID)
	providerOrderID := current.initiation.ProviderOrderID

	if outcome.Kind != payment.OutcomeSuccess {
		reason := strings.TrimSpace(outcome.Reason)
		msg := "Payment was cancelled"
		if outcome.Kind == payment.OutcomeFailed {
			msg = "Payment failed"
			if reason != "" {
				msg += ": " + reason
			}
		}
		if reason == "" {
			reason = string(outcome.Kind)
		}
		if err := f.payments.ReportFailure(ctx, current.order.ID, providerOrderID, reason); err != nil {
			f.logg.WarnErr(ctx, "checkout.report_failure_failed", err)
		}
		return pkgerrors.Fail[Confirmation](f.fail(ctx, pkgerrors.New(pkgerrors.CodePaymentFailed, msg), true))
	}

	cb := outcome.Callback
	if cb.ProviderOrderID == "" {
		cb.ProviderOrderID = providerOrderID
	}
	f.enter(ctx, StatePaymentAuthorized)

	var warnings []string
	verified := true
	if err := f.payments.Verify(ctx, current.order.ID, cb); err != nil {
		verified = false
		warnings = append(warnings, "payment verification pending")
		f.logg.WarnErr(ctx, "checkout.verify_failed", err)
	}
	f.enter(ctx, StateVerificationAttempted)

	if err := f.payments.NotifySuccess(ctx, current.order.ID, cb); err != nil {
		warnings = append(warnings, "payment confirmation pending")
		f.logg.WarnErr(ctx, "checkout.notify_success_failed", err)
	}

	return pkgerrors.Ok(f.finish(ctx, current.order, verified, warnings))
}

// Run is Begin, the provider's hosted checkout, then Complete.
func (f *Flow) Run(ctx context.Context, input Input, provider payment.Provider) pkgerrors.Result[Confirmation] {
	step := f.Begin(ctx, input)
	if !step.OK {
		return pkgerrors.Fail[Confirmation](step.Err)
	}
	if step.Data.Confirmation != nil {
		return pkgerrors.Ok(*step.Data.Confirmation)
	}
	outcome, err := provider.Open(ctx, *step.Data.Payment)
	if err != nil {
		outcome = payment.Outcome{Kind: payment.OutcomeFailed, Reason: pkgerrors.UserMessage(err)}
	}
	return f.Complete(ctx, step.Data.OrderID, outcome)
}

func (f *Flow) finish(ctx context.Context, order orders.Order, verified bool, warnings []string) Confirmation {
	if res := f.cart.Clear(ctx); !res.OK {
		warnings = append(warnings, "cart could not be cleared")
		f.logg.WarnErr(ctx, "checkout.cart_clear_failed", res.Err)
	}
	f.enter(ctx, StateCartCleared)

	conf := Confirmation{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		PaymentMethod: order.PaymentMethod,
		Redirect:      SuccessPath(order.ID),
		Verified:      verified,
		Warnings:      warnings,
	}
	f.mu.Lock()
	f.current = nil
	f.lastErr = ""
	f.mu.Unlock()
	f.enter(ctx, StateRedirected)
	f.logg.Info(f.logg.WithField(ctx, "redirect", conf.Redirect), "checkout.completed")
	return conf
}

// checkStock rejects lines that ask for more than the variant has. Products
// that cannot be loaded are left for the server to judge.
func (f *Flow) checkStock(ctx context.Context, items []cart.Item) error {
	if f.products == nil {
		return nil
	}
	inputs := make([]stock.StockValidationInput, 0, len(items))
	for _, item := range items {
		in := stock.StockValidationInput{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Size:        item.Size,
			Color:       item.Color.Name,
			Quantity:    item.Quantity,
			Available:   -1,
		}
		product, err := f.products.Product(ctx, item.ProductID)
		if err != nil {
			f.logg.WarnErr(f.logg.WithField(ctx, "product_id", item.ProductID), "checkout.stock_lookup_failed", err)
		} else if _, ok := product.Variant(item.Color.Name); ok && item.Size != "" {
			in.Available = product.StockFor(item.Color.Name, item.Size)
		}
		inputs = append(inputs, in)
	}
	return stock.ValidateStock(inputs)
}

// fail moves to failed, which re-enables the form. Blocking failures happen
// after an order exists and are raised as alerts rather than toasts.
// PendingOrderID is the order awaiting a provider outcome, if any.
func (f *Flow) PendingOrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePaymentInitiated || f.current == nil {
		return ""
	}
	return f.current.order.ID
}

func (f *Flow) abandonPending(ctx context.Context) {
	f.mu.Lock()
	pending := f.current
	stale := f.state == StatePaymentInitiated
	f.current = nil
	f.mu.Unlock()
	if !stale || pending == nil {
		return
	}
	ctx = f.logg.WithOrderID(ctx, pending.order.ID)
	providerOrderID := ""
	if pending.initiation != nil {
		providerOrderID = pending.initiation.ProviderOrderID
	}
	if err := f.payments.ReportFailure(ctx, pending.order.ID, providerOrderID, reasonSuperseded); err != nil {
		f.logg.WarnErr(ctx, "checkout.report_failure_failed", err)
	}
	f.logg.Warn(ctx, "checkout.pending_payment_abandoned")
}

func (f *Flow) fail(ctx context.Context, err error, blocking bool) error {
	f.mu.Lock()
	f.lastErr = pkgerrors.UserMessage(err)
	f.current = nil
	f.mu.Unlock()
	f.enter(ctx, StateFailed)
	f.logg.WarnErr(f.logg.WithField(ctx, "blocking", blocking), "checkout.failed", err)
	if blocking {
		return &BlockingError{err: err}
	}
	return err
}

func (f *Flow) acquire(allowed func(State) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return pkgerrors.New(pkgerrors.CodeConflict, "checkout is already in progress")
	}
	if !allowed(f.state) {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("checkout cannot continue from %s", f.state))
	}
	f.busy = true
	return nil
}

func (f *Flow) release() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

func (f *Flow) setAttempt(a *attempt) {
	f.mu.Lock()
	f.current = a
	f.mu.Unlock()
}

func (f *Flow) enter(ctx context.Context, next State) {
	f.mu.Lock()
	prev := f.state
	f.state = next
	f.transitions = append(f.transitions, next)
	f.mu.Unlock()
	f.logg.Debug(f.logg.WithFields(ctx, map[string]any{"from": string(prev), "to": string(next)}), "checkout.transition")
}

func (f *Flow) currency(init *payment.Initiation) string {
	if c := strings.TrimSpace(init.Currency); c != "" {
		return strings.ToUpper(c)
	}
	return f.cfg.NormalizedCurrency()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
