package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/payment"
	"github.com/angelmondragon/storefront/internal/users"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

// CheckoutPage is what the checkout form renders from.
type CheckoutPage struct {
	Cart           cart.View              `json:"cart"`
	Address        *types.Address         `json:"address,omitempty"`
	Email          string                 `json:"email,omitempty"`
	State          checkout.State         `json:"state"`
	Editable       bool                   `json:"editable"`
	Error          string                 `json:"error,omitempty"`
	PaymentMethods []orders.PaymentMethod `json:"paymentMethods"`
	// PendingOrderID is set while a payment awaits the provider outcome so a
	// reloaded page can report it through /checkout/{orderId}/payment.
	PendingOrderID string                 `json:"pendingOrderId,omitempty"`
}

// CheckoutView loads the cart and prefills the address from the profile
// when one is saved. A profile failure leaves the form blank.
func CheckoutView(flow *checkout.Flow, store *cart.Store, profiles *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		res := store.Fetch(ctx)
		if !res.OK {
			responses.WriteError(ctx, logg, w, res.Err)
			return
		}
		state, pending := flow.State(), flow.PendingOrderID()
		page := CheckoutPage{
			Cart:           cart.NewView(res.Data),
			State:          state,
			Editable:       state.Editable() || pending != "",
			Error:          flow.LastError(),
			PaymentMethods: []orders.PaymentMethod{orders.PaymentOnline, orders.PaymentCashOnDelivery},
			PendingOrderID: pending,
		}
		if profiles != nil && store.Authenticated(ctx) {
			if p := profiles.Profile(ctx); p.OK {
				page.Email = p.Data.Email
				if addr, ok := p.Data.DefaultAddress(); ok {
					page.Address = &addr
				}
			} else {
				logg.WarnErr(ctx, "checkout.profile_prefill_failed", p.Err)
			}
		}
		responses.WriteSuccess(w, page)
	}
}

// CheckoutSubmit places the order. Online payments answer with the provider
// request the page opens; cash on delivery answers with the confirmation.
func CheckoutSubmit(flow *checkout.Flow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkout.Input
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res := flow.Begin(r.Context(), req)
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		if res.Data.Confirmation != nil {
			responses.WriteNotice(w, res.Data, "Order placed")
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, res.Data)
	}
}

// CheckoutPaymentResult receives the hosted checkout's outcome for an order.
func CheckoutPaymentResult(flow *checkout.Flow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req payment.Outcome
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res := flow.Complete(r.Context(), chi.URLParam(r, "orderId"), req)
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteNotice(w, res.Data, "Payment successful")
	}
}

func OrderSuccess(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := store.Get(r.Context(), chi.URLParam(r, "orderId"))
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteSuccess(w, res.Data)
	}
}
