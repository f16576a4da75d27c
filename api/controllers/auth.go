package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/auth"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

func AuthSession(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Current(r.Context()))
	}
}

func AuthLogin(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSignIn(w, r, logg, svc.Login(r.Context(), req), "Welcome back")
	}
}

func AuthRegister(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSignIn(w, r, logg, svc.Register(r.Context(), req), "Account created")
	}
}

// AuthCallback completes an OAuth sign-in from the token query parameter.
func AuthCallback(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if msg := validators.QueryString(r, "error", 200); msg != "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, msg))
			return
		}
		writeSignIn(w, r, logg, svc.CompleteOAuth(r.Context(), validators.QueryString(r, "token", 4096)), "Signed in")
	}
}

func AuthLogout(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNotice(w, auth.Session{}, "Signed out")
	}
}

func writeSignIn(w http.ResponseWriter, r *http.Request, logg *logger.Logger, res pkgerrors.Result[auth.SignIn], notice string) {
	if !res.OK {
		responses.WriteError(r.Context(), logg, w, res.Err)
		return
	}
	if res.Data.MergeError != "" {
		notice += ". Your guest cart could not be merged: " + res.Data.MergeError
	}
	responses.WriteNotice(w, res.Data, notice)
}
