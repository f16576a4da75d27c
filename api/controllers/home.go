package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// HomeView is the landing page. A section that fails to load is left empty.
type HomeView struct {
	Banners         []catalog.Banner   `json:"banners"`
	MobileBanners   []catalog.Banner   `json:"mobileBanners"`
	Categories      []catalog.Category `json:"categories"`
	Deals           []catalog.Product  `json:"deals"`
	Recommendations []catalog.Product  `json:"recommendations"`
}

func Home(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		view := HomeView{
			Banners:         []catalog.Banner{},
			MobileBanners:   []catalog.Banner{},
			Categories:      []catalog.Category{},
			Deals:           []catalog.Product{},
			Recommendations: []catalog.Product{},
		}

		var g errgroup.Group
		section(&g, ctx, logg, "banners", svc.Banners, &view.Banners)
		section(&g, ctx, logg, "mobile_banners", svc.MobileBanners, &view.MobileBanners)
		section(&g, ctx, logg, "categories", svc.Categories, &view.Categories)
		section(&g, ctx, logg, "deals", svc.Deals, &view.Deals)
		section(&g, ctx, logg, "recommendations", func(ctx context.Context) ([]catalog.Product, error) {
			return svc.Recommendations(ctx, "")
		}, &view.Recommendations)
		_ = g.Wait()

		responses.WriteSuccess(w, view)
	}
}

// section loads one home section into dst. Errors are logged, never returned.
func section[T any](g *errgroup.Group, ctx context.Context, logg *logger.Logger, name string, load func(context.Context) ([]T, error), dst *[]T) {
	g.Go(func() error {
		items, err := load(ctx)
		if err != nil {
			logg.WarnErr(logg.WithField(ctx, "section", name), "home.section_failed", err)
			return nil
		}
		if items != nil {
			*dst = items
		}
		return nil
	})
}
