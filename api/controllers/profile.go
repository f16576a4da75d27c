package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/users"
	"github.com/angelmondragon/storefront/pkg/logger"
)

func ProfileView(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := svc.Profile(r.Context())
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteSuccess(w, res.Data)
	}
}

func ProfileUpdate(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.UpdateInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res := svc.UpdateProfile(r.Context(), req)
		if !res.OK {
			responses.WriteError(r.Context(), logg, w, res.Err)
			return
		}
		responses.WriteNotice(w, res.Data, "Profile updated")
	}
}
