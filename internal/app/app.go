// Package app assembles the storefront client: API client, stores, checkout
// flow, auth state and the view server router.
package app

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/auth"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/payment"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/internal/users"
	"github.com/angelmondragon/storefront/internal/wishlist"
	"github.com/angelmondragon/storefront/pkg/apiclient"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Params struct {
	Config *config.Config
	Logger *logger.Logger
	// Storage holds the token and guest session id.
	Storage storage.Store
	// Widgets caches recommendation and deal widgets. Nil disables caching.
	Widgets storage.ExpiringStore
	// Registry enables API metrics and the /metrics route when set.
	Registry   *prometheus.Registry
	HTTPClient *http.Client
	Pingers    map[string]controllers.Pinger
}

// App holds the wired client. Stores are exported for callers that drive
// them without the view server.
type App struct {
	Client   *apiclient.Client
	Catalog  catalog.Service
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Orders   *orders.Store
	Payments *payment.API
	Checkout *checkout.Flow
	Users    *users.Service
	Auth     *auth.Service

	storage storage.Store
	logg    *logger.Logger
	handler http.Handler
}

func New(p Params) (*App, error) {
	cfg, logg := p.Config, p.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	var reqMetrics *metrics.RequestMetrics
	if p.Registry != nil {
		reqMetrics = metrics.NewRequestMetrics(p.Registry)
	}
	client, err := apiclient.New(apiclient.Params{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		UserAgent:  cfg.API.UserAgent,
		Tokens:     p.Storage,
		Logger:     logg,
		Metrics:    reqMetrics,
		HTTPClient: p.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	var widgets *catalog.WidgetCache
	if p.Widgets != nil {
		widgets = catalog.NewWidgetCache(p.Widgets, cfg.Cache.WidgetTTL, logg)
	}
	catalogSvc, err := catalog.NewService(client, widgets, logg)
	if err != nil {
		return nil, err
	}

	guest := session.NewGuest(p.Storage)
	cartStore, err := cart.NewStore(cart.Params{API: client, Tokens: p.Storage, Guest: guest, Logger: logg})
	if err != nil {
		return nil, err
	}
	wishlistStore, err := wishlist.NewStore(wishlist.Params{
		API:      client,
		Products: catalogSvc,
		Cart:     cartStore,
		Tokens:   p.Storage,
		Logger:   logg,
	})
	if err != nil {
		return nil, err
	}
	orderStore, err := orders.NewStore(client, logg)
	if err != nil {
		return nil, err
	}
	payments, err := payment.NewAPI(client)
	if err != nil {
		return nil, err
	}
	flow, err := checkout.NewFlow(checkout.Params{
		Cart:     cartStore,
		Orders:   orderStore,
		Payments: payments,
		Products: catalogSvc,
		Config:   cfg.Payment,
		Logger:   logg,
	})
	if err != nil {
		return nil, err
	}
	profiles, err := users.NewService(client, logg)
	if err != nil {
		return nil, err
	}
	authSvc, err := auth.NewService(auth.Params{
		API:       client,
		Tokens:    p.Storage,
		Guest:     guest,
		Cart:      cartStore,
		Resetters: []auth.Resetter{wishlistStore, profiles},
		Logger:    logg,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Client:   client,
		Catalog:  catalogSvc,
		Cart:     cartStore,
		Wishlist: wishlistStore,
		Orders:   orderStore,
		Payments: payments,
		Checkout: flow,
		Users:    profiles,
		Auth:     authSvc,
		storage:  p.Storage,
		logg:     logg,
	}

	deps := routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Catalog:  catalogSvc,
		Cart:     cartStore,
		Wishlist: wishlistStore,
		Orders:   orderStore,
		Checkout: flow,
		Users:    profiles,
		Auth:     authSvc,
		Pingers:  p.Pingers,
	}
	if p.Registry != nil && cfg.Metrics.Enabled {
		deps.Metrics = promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})
	}
	a.handler = routes.NewRouter(deps)
	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.handler
}

// Start restores the session from storage and follows token changes made by
// other client instances until ctx ends. The returned func stops listening.
func (a *App) Start(ctx context.Context) func() {
	if a.Auth.Current(ctx).Authenticated {
		if res := a.Wishlist.Fetch(ctx); !res.OK {
			a.logg.WarnErr(ctx, "app.wishlist_restore_failed", res.Err)
		}
	}
	return a.Auth.Listen(ctx, a.storage)
}
