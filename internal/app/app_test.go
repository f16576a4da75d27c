package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/internal/fakeapi"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t      *testing.T
	app    *App
	api    *fakeapi.Server
	server *httptest.Server
	local  *storage.Memory
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Notice *types.Notice   `json:"notice"`
	Error  *types.APIError `json:"error"`
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := fakeapi.New(t)
	api.AddProduct(fakeapi.Product{
		ID:            "p1",
		Name:          "Linen Shirt",
		Price:         decimal.NewFromInt(500),
		OriginalPrice: decimal.NewFromInt(1000),
		Colors: []fakeapi.Color{{
			Name:   "Green",
			Hex:    "#00ff00",
			Images: []string{"green-1.jpg"},
			Sizes:  []fakeapi.Size{{Size: "m", Stock: 10}},
		}},
	})
	api.AddDeal("p1")
	api.AddBanner(fakeapi.Banner{ID: "b1", Image: "hero.jpg"}, false)
	api.AddUser("Asha", "asha@example.com", "secret")

	cfg := &config.Config{
		App:     config.AppConfig{Env: "test"},
		API:     config.APIConfig{BaseURL: api.URL(), Timeout: 5 * time.Second},
		Cache:   config.CacheConfig{WidgetTTL: time.Hour},
		Server:  config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Payment: config.PaymentConfig{ProviderKey: "rzp_test", Currency: "INR", MerchantName: "Storefront"},
		Metrics: config.MetricsConfig{Enabled: true},
	}
	local := storage.NewMemory()
	a, err := New(Params{
		Config:     cfg,
		Storage:    local,
		Widgets:    local,
		Registry:   prometheus.NewRegistry(),
		HTTPClient: api.Client(),
	})
	require.NoError(t, err)
	stop := a.Start(context.Background())
	t.Cleanup(stop)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return &harness{t: t, app: a, api: api, server: srv, local: local}
}

func (h *harness) do(method, path string, body any) (int, envelope) {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, h.server.URL+path, reader)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.server.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

var shipping = map[string]any{
	"fullName":     "Asha Rao",
	"phone":        "9876543210",
	"addressLine1": "12 MG Road",
	"city":         "Bengaluru",
	"state":        "KA",
	"pincode":      "560001",
}

func TestGuestToCheckoutJourney(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	status, env := h.do(http.MethodPost, "/cart/items", map[string]any{
		"productId":     "p1",
		"quantity":      2,
		"selectedSize":  "m",
		"selectedColor": map[string]string{"name": "Green", "hex": "#00ff00"},
	})
	require.Equal(t, http.StatusOK, status, "add: %+v", env.Error)
	require.NotNil(t, env.Notice)
	assert.Equal(t, "Added to cart", env.Notice.Message)

	status, env = h.do(http.MethodPost, "/auth/login", map[string]string{"email": "asha@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, status, "login: %+v", env.Error)
	signIn := decodeData[struct {
		Merged bool `json:"merged"`
	}](t, env)
	assert.True(t, signIn.Merged)

	status, env = h.do(http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, status)
	view := decodeData[struct {
		ItemCount int    `json:"itemCount"`
		Total     string `json:"total"`
	}](t, env)
	assert.Equal(t, 2, view.ItemCount)
	assert.Equal(t, "1000", view.Total)

	status, env = h.do(http.MethodPost, "/checkout", map[string]any{"shippingAddress": shipping, "paymentMethod": "online"})
	require.Equal(t, http.StatusCreated, status, "checkout: %+v", env.Error)
	step := decodeData[struct {
		OrderID string `json:"orderId"`
		Payment struct {
			ProviderOrderID string `json:"providerOrderId"`
			Key             string `json:"key"`
		} `json:"payment"`
	}](t, env)
	require.NotEmpty(t, step.Payment.ProviderOrderID)
	assert.Equal(t, "rzp_test", step.Payment.Key)

	status, env = h.do(http.MethodPost, "/checkout/"+step.OrderID+"/payment", map[string]any{"status": "dismissed"})
	assert.Equal(t, http.StatusPaymentRequired, status)
	require.NotNil(t, env.Error)
	assert.True(t, env.Error.Blocking)

	status, env = h.do(http.MethodPost, "/checkout", map[string]any{"shippingAddress": shipping, "paymentMethod": "online"})
	require.Equal(t, http.StatusCreated, status, "retry: %+v", env.Error)
	step = decodeData[struct {
		OrderID string `json:"orderId"`
		Payment struct {
			ProviderOrderID string `json:"providerOrderId"`
			Key             string `json:"key"`
		} `json:"payment"`
	}](t, env)

	h.api.Fail(http.MethodPost, "/payment/verify", http.StatusInternalServerError, "", 1)
	status, env = h.do(http.MethodPost, "/checkout/"+step.OrderID+"/payment", map[string]any{
		"status": "success",
		"callback": map[string]string{
			"providerOrderId":   step.Payment.ProviderOrderID,
			"providerPaymentId": "pay_1",
			"signature":         "sig",
		},
	})
	require.Equal(t, http.StatusOK, status, "payment: %+v", env.Error)
	conf := decodeData[struct {
		Redirect string `json:"redirect"`
	}](t, env)
	assert.Equal(t, "/order-success/"+step.OrderID, conf.Redirect)

	status, _ = h.do(http.MethodGet, conf.Redirect, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decodeData[struct {
		Empty bool `json:"empty"`
	}](t, env).Empty)
}

func TestWishlistFromProductPage(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	status, env := h.do(http.MethodPost, "/wishlist/toggle", map[string]any{"productId": "p1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)

	status, _ = h.do(http.MethodPost, "/auth/login", map[string]string{"email": "asha@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodPost, "/wishlist/toggle", map[string]any{
		"productId":     "p1",
		"selectedSize":  "m",
		"selectedColor": map[string]string{"name": "Green", "hex": "#00ff00"},
		"selectedImage": "green-1.jpg",
	})
	require.Equal(t, http.StatusOK, status, "toggle: %+v", env.Error)
	assert.Equal(t, "Added to wishlist", env.Notice.Message)

	status, env = h.do(http.MethodGet, "/products/p1", nil)
	require.Equal(t, http.StatusOK, status)
	detail := decodeData[struct {
		InWishlist      bool `json:"inWishlist"`
		DiscountPercent int  `json:"discountPercent"`
	}](t, env)
	assert.True(t, detail.InWishlist)
	assert.Equal(t, 50, detail.DiscountPercent)

	status, env = h.do(http.MethodPost, "/wishlist/items/p1/move", nil)
	require.Equal(t, http.StatusOK, status, "move: %+v", env.Error)
	assert.True(t, decodeData[struct {
		Empty bool `json:"empty"`
	}](t, env).Empty)

	lines := h.app.Cart.View().Lines
	require.Len(t, lines, 1)
	assert.Equal(t, "m", lines[0].Size)
	assert.Equal(t, "Green", lines[0].Color.Name)
}

func TestHomeToleratesFailingSections(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.Fail(http.MethodGet, "/mobile-banners", http.StatusInternalServerError, "", 0)

	status, env := h.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, status)
	home := decodeData[struct {
		Banners       []json.RawMessage `json:"banners"`
		MobileBanners []json.RawMessage `json:"mobileBanners"`
		Deals         []json.RawMessage `json:"deals"`
	}](t, env)
	assert.Len(t, home.Banners, 1)
	assert.Empty(t, home.MobileBanners)
	assert.Len(t, home.Deals, 1)

	h.do(http.MethodGet, "/", nil)
	assert.Equal(t, 1, h.api.Calls(http.MethodGet, "/products/deals"), "deals widget should be cached")
}

func TestMetricsEndpointExposesAPICalls(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.do(http.MethodGet, "/products", nil)

	resp, err := h.server.Client().Get(h.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "storefront_api_request_success")
}

func TestSessionFollowsOtherInstance(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	status, _ := h.do(http.MethodPost, "/auth/login", map[string]string{"email": "asha@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, status)

	h.local.Inject(storage.KeyToken, "", true)
	status, env := h.do(http.MethodGet, "/auth/session", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decodeData[struct {
		Authenticated bool `json:"authenticated"`
	}](t, env).Authenticated)
}
