package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// Page is a static content page.
type Page struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

var staticPages = map[string]Page{
	"about": {
		Slug:  "about",
		Title: "About Us",
		Body:  "We design everyday clothing in small batches and ship across India.",
	},
	"contact": {
		Slug:  "contact",
		Title: "Contact",
		Body:  "Write to support@storefront.example or call +91 80 4000 0000, Monday to Saturday.",
	},
	"shipping-policy": {
		Slug:  "shipping-policy",
		Title: "Shipping Policy",
		Body:  "Orders ship within two business days. Delivery takes three to seven days depending on the pincode.",
	},
	"return-policy": {
		Slug:  "return-policy",
		Title: "Returns",
		Body:  "Delivered orders can be returned within seven days. Refunds go back to the original payment method.",
	},
	"privacy-policy": {
		Slug:  "privacy-policy",
		Title: "Privacy Policy",
		Body:  "We store your name, contact details and addresses only to fulfil your orders.",
	},
	"terms": {
		Slug:  "terms",
		Title: "Terms of Service",
		Body:  "Prices include taxes. Orders are confirmed once payment is received or cash on delivery is accepted.",
	},
}

func StaticPage(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := staticPages[strings.ToLower(chi.URLParam(r, "slug"))]
		if !ok {
			responses.WriteError(r.Context(), logg, w, notFound("page"))
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func BlogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Blogs(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func BlogDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Blog(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func NotFound(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, notFound("page"))
	}
}
