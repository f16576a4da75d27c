package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

type cartLineRequest struct {
	ProductID string `json:"productId" validate:"required,notblank"`
	Quantity  int    `json:"quantity"`
	types.Selection
}

type discountRequest struct {
	Code string `json:"code"`
}

// CartView is the one cart page. It always refetches so totals are the
// server's.
func CartView(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeCart(w, r, logg, store.Fetch(r.Context()), "")
	}
}

func CartAddItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cart.AddInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, logg, store.AddItem(r.Context(), req), "Added to cart")
	}
}

func CartUpdateItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartLineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, logg, store.UpdateQuantity(r.Context(), req.ProductID, req.Selection, req.Quantity), "Cart updated")
	}
}

func CartRemoveItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartLineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, logg, store.RemoveItem(r.Context(), req.ProductID, req.Selection), "Item removed")
	}
}

func CartClear(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeCart(w, r, logg, store.Clear(r.Context()), "Cart cleared")
	}
}

func CartApplyDiscount(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req discountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, logg, store.ApplyDiscount(r.Context(), req.Code), "Discount applied")
	}
}

func CartRemoveDiscount(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeCart(w, r, logg, store.RemoveDiscount(r.Context()), "Discount removed")
	}
}

// CartValidateDiscount checks a code without applying it.
func CartValidateDiscount(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req discountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res := store.ValidateDiscount(r.Context(), req.Code)
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteSuccess(w, res.Data)
	}
}

func writeCart(w http.ResponseWriter, r *http.Request, logg *logger.Logger, res pkgerrors.Result[cart.State], notice string) {
	if !res.OK {
		responses.WriteError(r.Context(), logg, w, res.Err)
		return
	}
	view := cart.NewView(res.Data)
	if notice == "" {
		responses.WriteSuccess(w, view)
		return
	}
	responses.WriteNotice(w, view, notice)
}
