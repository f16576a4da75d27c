package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func OrderList(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res := store.List(r.Context(), orders.ListQuery{
			Status: orders.Status(validators.QueryString(r, "status", 40)),
			Page:   page,
		})
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteSuccess(w, res.Data)
	}
}

func OrderSearch(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := store.Search(r.Context(), validators.QueryString(r, "q", 100))
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteSuccess(w, res.Data)
	}
}

func OrderStats(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := store.Stats(r.Context())
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteSuccess(w, res.Data)
	}
}

func OrderDetail(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := store.Get(r.Context(), chi.URLParam(r, "orderId"))
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteSuccess(w, res.Data)
	}
}

func OrderCancel(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cancelRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res := store.Cancel(r.Context(), chi.URLParam(r, "orderId"), req.Reason)
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteNotice(w, res.Data, "Order cancelled")
	}
}

func OrderReturn(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orders.ReturnInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res := store.RequestReturn(r.Context(), chi.URLParam(r, "orderId"), req)
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteNotice(w, res.Data, "Return requested")
	}
}
