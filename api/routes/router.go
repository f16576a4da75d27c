package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/auth"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/users"
	"github.com/angelmondragon/storefront/internal/wishlist"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// Deps is everything the view server renders from.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Catalog  catalog.Service
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Orders   *orders.Store
	Checkout *checkout.Flow
	Users    *users.Service
	Auth     *auth.Service
	// Metrics is served on /metrics when set.
	Metrics http.Handler
	Pingers map[string]controllers.Pinger
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Pingers))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Get("/", controllers.Home(d.Catalog, logg))
	r.Get("/categories/{categoryId}/subcategories", controllers.Subcategories(d.Catalog, logg))
	r.Get("/products", controllers.ProductList(d.Catalog, logg))
	r.Get("/products/{productId}", controllers.ProductDetail(d.Catalog, d.Wishlist, logg))
	r.Get("/search", controllers.ProductSearch(d.Catalog, logg))
	r.Get("/pages/{slug}", controllers.StaticPage(logg))
	r.Get("/blogs", controllers.BlogList(d.Catalog, logg))
	r.Get("/blogs/{slug}", controllers.BlogDetail(d.Catalog, logg))

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", controllers.CartView(d.Cart, logg))
		r.Delete("/", controllers.CartClear(d.Cart, logg))
		r.Post("/items", controllers.CartAddItem(d.Cart, logg))
		r.Patch("/items", controllers.CartUpdateItem(d.Cart, logg))
		r.Delete("/items", controllers.CartRemoveItem(d.Cart, logg))
		r.Post("/discount", controllers.CartApplyDiscount(d.Cart, logg))
		r.Delete("/discount", controllers.CartRemoveDiscount(d.Cart, logg))
		r.Post("/discount/validate", controllers.CartValidateDiscount(d.Cart, logg))
	})

	r.Route("/wishlist", func(r chi.Router) {
		r.Get("/", controllers.WishlistView(d.Wishlist, logg))
		r.Delete("/", controllers.WishlistClear(d.Wishlist, logg))
		r.Get("/count", controllers.WishlistCount(d.Wishlist, logg))
		r.Post("/toggle", controllers.WishlistToggle(d.Wishlist, logg))
		r.Post("/move-all", controllers.WishlistMoveAll(d.Wishlist, logg))
		r.Delete("/items/{productId}", controllers.WishlistRemove(d.Wishlist, logg))
		r.Post("/items/{productId}/move", controllers.WishlistMoveToCart(d.Wishlist, logg))
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/", controllers.CheckoutView(d.Checkout, d.Cart, d.Users, logg))
		r.Post("/", controllers.CheckoutSubmit(d.Checkout, logg))
		r.Post("/{orderId}/payment", controllers.CheckoutPaymentResult(d.Checkout, logg))
	})
	r.Get("/order-success/{orderId}", controllers.OrderSuccess(d.Orders, logg))

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", controllers.OrderList(d.Orders, logg))
		r.Get("/search", controllers.OrderSearch(d.Orders, logg))
		r.Get("/stats", controllers.OrderStats(d.Orders, logg))
		r.Get("/{orderId}", controllers.OrderDetail(d.Orders, logg))
		r.Post("/{orderId}/cancel", controllers.OrderCancel(d.Orders, logg))
		r.Post("/{orderId}/return", controllers.OrderReturn(d.Orders, logg))
	})

	r.Get("/profile", controllers.ProfileView(d.Users, logg))
	r.Put("/profile", controllers.ProfileUpdate(d.Users, logg))

	r.Route("/auth", func(r chi.Router) {
		r.Get("/session", controllers.AuthSession(d.Auth))
		r.Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
		r.Get("/callback", controllers.AuthCallback(d.Auth, logg))
	})

	r.NotFound(controllers.NotFound(logg))
	return r
}
