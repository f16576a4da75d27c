// Package fakeapi is an in-memory stand-in for the storefront REST API. Tests
// seed it, point the API client at URL(), inject failures per route and count
// calls.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type failure struct {
	method    string
	path      string
	status    int
	message   string
	remaining int
	forever   bool
}

// Server holds all fake backend state behind one mutex.
type Server struct {
	t      testing.TB
	mu     sync.Mutex
	http   *httptest.Server
	secret []byte
	now    func() time.Time
	seq    int

	products      map[string]Product
	productOrder  []string
	categories    []Category
	subcategories map[string][]Category
	banners       []Banner
	mobileBanners []Banner
	blogs         []Blog
	deals         []string
	users         map[string]*user
	carts         map[string]*cartState
	wishlists     map[string]*wishlist
	discounts     map[string]decimal.Decimal
	orders        map[string]*Order
	orderSeq      []string
	payments      map[string]*Payment

	calls    map[string]int
	failures []*failure
}

// New starts a fake API and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		t:             t,
		secret:        []byte("fakeapi-secret"),
		now:           time.Now,
		products:      map[string]Product{},
		subcategories: map[string][]Category{},
		users:         map[string]*user{},
		carts:         map[string]*cartState{},
		wishlists:     map[string]*wishlist{},
		discounts:     map[string]decimal.Decimal{},
		orders:        map[string]*Order{},
		payments:      map[string]*Payment{},
		calls:         map[string]int{},
	}
	s.http = httptest.NewServer(s.routes())
	t.Cleanup(s.http.Close)
	return s
}

func (s *Server) URL() string { return s.http.URL }

func (s *Server) Client() *http.Client { return s.http.Client() }

// Fail makes the next times requests to method+path fail with status and
// message. times <= 0 fails every request until Reset.
func (s *Server) Fail(method, path string, status int, message string, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, &failure{method: method, path: path, status: status, message: message, remaining: times, forever: times <= 0})
}

// Reset drops injected failures and call counts.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = nil
	s.calls = map[string]int{}
}

// Calls returns how many requests hit method+path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// TotalCalls counts every request the fake has served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.track)

	r.Get("/categories", s.listCategories)
	r.Get("/categories/{id}/subcategories", s.listSubcategories)
	r.Get("/products", s.listProducts)
	r.Get("/products/search", s.searchProducts)
	r.Get("/products/recommendations", s.recommendations)
	r.Get("/products/deals", s.listDeals)
	r.Get("/products/{id}", s.getProduct)
	r.Get("/banners", s.listBanners)
	r.Get("/mobile-banners", s.listMobileBanners)
	r.Get("/blogs", s.listBlogs)
	r.Get("/blogs/{slug}", s.getBlog)

	r.Post("/auth/login", s.login)
	r.Post("/auth/register", s.register)

	r.Route("/guest-cart/{sid}", func(r chi.Router) {
		r.Get("/", s.getCart)
		r.Post("/add", s.addToCart)
		r.Put("/update", s.updateCart)
		r.Delete("/remove", s.removeFromCart)
		r.Delete("/clear", s.clearCart)
		r.Post("/discount/apply", s.applyDiscount)
		r.Delete("/discount/remove", s.removeDiscount)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/cart", s.getCart)
		r.Post("/cart/add", s.addToCart)
		r.Put("/cart/update", s.updateCart)
		r.Delete("/cart/remove", s.removeFromCart)
		r.Delete("/cart/clear", s.clearCart)
		r.Post("/cart/merge", s.mergeCart)
		r.Post("/discount/apply", s.applyDiscount)
		r.Delete("/discount/remove", s.removeDiscount)
		r.Post("/discount/validate", s.validateDiscount)

		r.Post("/wishlist", s.createWishlist)
		r.Get("/wishlist", s.getWishlist)
		r.Post("/wishlist/add", s.addToWishlist)
		r.Delete("/wishlist/remove/{productId}", s.removeFromWishlist)
		r.Post("/wishlist/toggle", s.toggleWishlist)
		r.Get("/wishlist/count", s.wishlistCount)
		r.Post("/wishlist/move-to-cart/{productId}", s.moveToCart)
		r.Delete("/wishlist/clear", s.clearWishlist)

		r.Post("/orders", s.createOrder)
		r.Get("/orders", s.listOrders)
		r.Get("/orders/search", s.searchOrders)
		r.Get("/orders/stats", s.orderStats)
		r.Get("/orders/{id}", s.getOrder)
		r.Put("/orders/{id}/cancel", s.cancelOrder)
		r.Post("/orders/{id}/return", s.returnOrder)

		r.Post("/payment/initiate", s.initiatePayment)
		r.Post("/payment/verify", s.verifyPayment)
		r.Post("/payment/success", s.paymentSuccess)
		r.Post("/payment/failure", s.paymentFailure)
		r.Get("/payment/details/{orderId}", s.paymentDetails)

		r.Get("/user/profile", s.getProfile)
		r.Put("/user/profile", s.updateProfile)
	})
	return r
}

// track counts the call and applies any injected failure before routing.
func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimRight(r.URL.Path, "/")
		if path == "" {
			path = "/"
		}
		s.mu.Lock()
		s.calls[r.Method+" "+path]++
		var hit *failure
		for _, f := range s.failures {
			if f.method != r.Method || f.path != path {
				continue
			}
			if f.forever || f.remaining > 0 {
				hit = f
				f.remaining--
				break
			}
		}
		s.mu.Unlock()

		if hit != nil {
			writeError(w, hit.status, hit.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

func decode(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
