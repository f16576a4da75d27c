package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Params{BaseURL: srv.URL + "/api/", Tokens: tokens, HTTPClient: srv.Client()})
	require.NoError(t, err)
	return client
}

func TestDoAttachesHeadersAndDecodesEnvelope(t *testing.T) {
	tokens := storage.NewMemory()
	require.NoError(t, tokens.Set(context.Background(), storage.KeyToken, "jwt-token"))

	var gotAuth, gotType, gotPath string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"p1","name":"Linen Shirt"}}`))
	}, tokens)

	var out product
	err := client.Post(context.Background(), "/cart/add", map[string]any{"productId": "p1"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt-token", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "/api/cart/add", gotPath)
	assert.Equal(t, "p1", gotBody["productId"])
	assert.Equal(t, product{ID: "p1", Name: "Linen Shirt"}, out)
}

func TestDoWithoutTokenOmitsAuthorization(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[{"_id":"p1"}]`))
	}, storage.NewMemory())

	var out []product
	require.NoError(t, client.Get(context.Background(), "products", &out))
	assert.Empty(t, gotAuth)
	require.Len(t, out, 1, "bare bodies decode without an envelope")
}

func TestDoSurfacesServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid coupon code"}`))
	}, nil)

	err := client.Post(context.Background(), "discount/apply", map[string]string{"code": "BAD"}, nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "Invalid coupon code", typed.Message())
}

func TestDoFallsBackToGenericMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}, nil)

	err := client.Get(context.Background(), "cart", nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUpstream, typed.Code())
	assert.Equal(t, "request failed with status 500", typed.Message())
}

func TestDoTreatsSuccessFalseAsFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"Out of stock"}`))
	}, nil)

	err := client.Post(context.Background(), "cart/add", map[string]any{}, nil)
	assert.Equal(t, "Out of stock", pkgerrors.UserMessage(err))
}

func TestDoNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client, err := New(Params{BaseURL: srv.URL})
	require.NoError(t, err)

	err = client.Get(context.Background(), "cart", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNetwork))
}

func TestDoCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Get(ctx, "products", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNetwork))
}

func TestDoRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	client, err := New(Params{BaseURL: srv.URL, Metrics: metrics.NewRequestMetrics(reg)})
	require.NoError(t, err)

	require.NoError(t, client.Get(context.Background(), "ok", nil))
	require.Error(t, client.Get(context.Background(), "fail", nil))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["storefront_api_request_success"])
	assert.True(t, names["storefront_api_request_failure"])
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Params{})
	assert.Error(t, err)
}
