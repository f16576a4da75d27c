package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/pagination"
)

// WishlistChecker answers whether a product is already saved.
type WishlistChecker interface {
	Contains(productID string) bool
}

// ProductView is the detail page: the product, its pricing badges and
// related products.
type ProductView struct {
	Product         *catalog.Product  `json:"product"`
	DiscountPercent int               `json:"discountPercent"`
	InStock         bool              `json:"inStock"`
	InWishlist      bool              `json:"inWishlist"`
	Recommendations []catalog.Product `json:"recommendations"`
}

func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		minPrice, err := validators.ParseQueryDecimal(r, "minPrice")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		maxPrice, err := validators.ParseQueryDecimal(r, "maxPrice")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Products(r.Context(), catalog.ListQuery{
			Category:    validators.QueryString(r, "category", 100),
			Subcategory: validators.QueryString(r, "subcategory", 100),
			Sort:        validators.QueryString(r, "sort", 40),
			MinPrice:    minPrice,
			MaxPrice:    maxPrice,
			Page:        page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func ProductSearch(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Search(r.Context(), validators.QueryString(r, "q", 200), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func Subcategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Subcategories(r.Context(), chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// ProductDetail renders a product. Related products are optional.
func ProductDetail(svc catalog.Service, saved WishlistChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "productId")
		product, err := svc.Product(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view := ProductView{
			Product:         product,
			DiscountPercent: product.DiscountPercent(),
			InStock:         product.InStock(),
			Recommendations: related(ctx, svc, logg, product.ID),
		}
		if saved != nil {
			view.InWishlist = saved.Contains(product.ID)
		}
		responses.WriteSuccess(w, view)
	}
}

func related(ctx context.Context, svc catalog.Service, logg *logger.Logger, productID string) []catalog.Product {
	items, err := svc.Recommendations(ctx, productID)
	if err != nil {
		logg.WarnErr(logg.WithField(ctx, "product_id", productID), "product.recommendations_failed", err)
		return []catalog.Product{}
	}
	out := items[:0:0]
	for _, p := range items {
		if p.ID != productID {
			out = append(out, p)
		}
	}
	return out
}

func pageParams(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}

func notFound(what string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
}
