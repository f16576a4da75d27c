package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/wishlist"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type moveRequest struct {
	Quantity int `json:"quantity"`
}

// ToggleView is the toggle outcome plus the refreshed wishlist.
type ToggleView struct {
	wishlist.ToggleResult
	Wishlist wishlist.View `json:"wishlist"`
}

// WishlistView is the one wishlist page.
func WishlistView(store *wishlist.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeWishlist(w, r, logg, store.Fetch(r.Context()), "")
	}
}

func WishlistCount(store *wishlist.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := store.Count(r.Context())
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"count": res.Data})
	}
}

func WishlistToggle(store *wishlist.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wishlist.AddInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res := store.Toggle(r.Context(), req)
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		msg := "Removed from wishlist"
		if res.Data.InWishlist {
			msg = "Added to wishlist"
		}
		responses.WriteNotice(w, ToggleView{ToggleResult: res.Data, Wishlist: store.View()}, msg)
	}
}

func WishlistRemove(store *wishlist.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeWishlist(w, r, logg, store.Remove(r.Context(), chi.URLParam(r, "productId")), "Removed from wishlist")
	}
}

func WishlistMoveToCart(store *wishlist.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := moveRequest{Quantity: 1}
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeWishlist(w, r, logg, store.MoveToCart(r.Context(), chi.URLParam(r, "productId"), req.Quantity), "Moved to cart")
	}
}

// WishlistMoveAll reports partial success as a notice, not an error, so the
// view still re-renders with what moved.
func WishlistMoveAll(store *wishlist.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := store.MoveAllToCart(r.Context())
		payload := map[string]any{"summary": res.Data, "wishlist": store.View()}
		switch {
		case res.OK:
			responses.WriteNotice(w, payload, fmt.Sprintf("Moved %d item(s) to cart", res.Data.Moved))
		case pkgerrors.IsCode(res.Err, pkgerrors.CodePartialFailure) && res.Data.Moved > 0:
			responses.WritePartial(w, payload, res.Err)
		default:
			responses.WriteError(r.Context(), logg, w, res.Err)
		}
	}
}

func WishlistClear(store *wishlist.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeWishlist(w, r, logg, store.Clear(r.Context()), "Wishlist cleared")
	}
}

func writeWishlist(w http.ResponseWriter, r *http.Request, logg *logger.Logger, res pkgerrors.Result[wishlist.State], notice string) {
	if !res.OK {
		responses.WriteError(r.Context(), logg, w, res.Err)
		return
	}
	view := wishlist.NewView(res.Data)
	if notice == "" {
		responses.WriteSuccess(w, view)
		return
	}
	responses.WriteNotice(w, view, notice)
}
