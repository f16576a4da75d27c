package orders

import (
	"context"
	"net/http"
	"testing"

	"github.com/angelmondragon/storefront/internal/fakeapi"
	"github.com/angelmondragon/storefront/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var address = types.Address{
	FullName:   "Meera Nair",
	Phone:      "+91 98765 43210",
	Line1:      "12 MG Road",
	City:       "Kochi",
	State:      "Kerala",
	PostalCode: "682001",
}

type fixture struct {
	orders *Store
	api    *fakeapi.Server
	client *apiclient.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := fakeapi.New(t)
	api.AddProduct(fakeapi.Product{ID: "p1", Name: "Silk Scarf", Price: decimal.NewFromInt(1200)})
	userID := api.AddUser("Meera", "meera@example.com", "pw")

	local := storage.NewMemory()
	require.NoError(t, local.Set(context.Background(), storage.KeyToken, api.Token(userID)))
	client, err := apiclient.New(apiclient.Params{BaseURL: api.URL(), Tokens: local, HTTPClient: api.Client()})
	require.NoError(t, err)
	store, err := NewStore(client, nil)
	require.NoError(t, err)
	return &fixture{orders: store, api: api, client: client}
}

func (f *fixture) placeOrder(t *testing.T) Order {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.client.Post(ctx, "/cart/add", map[string]any{"productId": "p1", "quantity": 2}, nil))
	res := f.orders.Create(ctx, CreateInput{ShippingAddress: address, PaymentMethod: PaymentCashOnDelivery})
	require.True(t, res.OK, res.Message())
	return res.Data
}

func TestCreateValidatesBeforeCalling(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	bad := address
	bad.PostalCode = ""
	res := f.orders.Create(context.Background(), CreateInput{ShippingAddress: bad, PaymentMethod: PaymentOnline})
	if !pkgerrors.IsCode(res.Err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", res.Err)
	}

	res = f.orders.Create(context.Background(), CreateInput{ShippingAddress: address, PaymentMethod: "cheque"})
	if !pkgerrors.IsCode(res.Err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for payment method, got %v", res.Err)
	}
	if f.api.TotalCalls() != 0 {
		t.Fatalf("expected no calls, got %d", f.api.TotalCalls())
	}
}

func TestCreateAndList(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	order := f.placeOrder(t)

	assert.Equal(t, StatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(2400)))
	assert.Equal(t, "India", order.ShippingAddress.Country)
	assert.Equal(t, "+919876543210", order.ShippingAddress.Phone)

	page := f.orders.List(context.Background(), ListQuery{Page: pagination.Params{Page: 1, Limit: 5}})
	require.True(t, page.OK, page.Message())
	require.Len(t, page.Data.Orders, 1)
	assert.Equal(t, order.ID, page.Data.Orders[0].ID)
	assert.Equal(t, 1, page.Data.Pagination.Total)

	found := f.orders.Search(context.Background(), "silk")
	require.True(t, found.OK)
	assert.Len(t, found.Data, 1)

	stats := f.orders.Stats(context.Background())
	require.True(t, stats.OK)
	assert.Equal(t, 1, stats.Data.TotalOrders)
	assert.Equal(t, 1, stats.Data.ByStatus[StatusPending])
}

func TestCancelUpdatesLocalStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	order := f.placeOrder(t)

	res := f.orders.Cancel(context.Background(), order.ID, "Ordered by mistake")
	require.True(t, res.OK, res.Message())
	assert.Equal(t, StatusCancelled, res.Data.Status)

	cached, ok := f.orders.Cached(order.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, cached.Status)

	again := f.orders.Cancel(context.Background(), order.ID, "")
	assert.True(t, pkgerrors.IsCode(again.Err, pkgerrors.CodeConflict))
	assert.Equal(t, 1, f.api.Calls(http.MethodPut, "/orders/"+order.ID+"/cancel"))
}

func TestCancelFailureKeepsStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	order := f.placeOrder(t)
	f.api.Fail(http.MethodPut, "/orders/"+order.ID+"/cancel", http.StatusBadRequest, "Order already shipped", 1)

	res := f.orders.Cancel(context.Background(), order.ID, "")
	require.False(t, res.OK)
	assert.Equal(t, "Order already shipped", res.Message())
	cached, _ := f.orders.Cached(order.ID)
	assert.Equal(t, StatusPending, cached.Status)
}

func TestRequestReturn(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)

	res := f.orders.RequestReturn(ctx, order.ID, ReturnInput{Reason: "Wrong size"})
	require.True(t, pkgerrors.IsCode(res.Err, pkgerrors.CodeConflict), "pending orders are not returnable")

	f.api.SetOrderStatus(order.ID, "delivered")
	require.True(t, f.orders.Get(ctx, order.ID).OK)

	res = f.orders.RequestReturn(ctx, order.ID, ReturnInput{Reason: " "})
	require.True(t, pkgerrors.IsCode(res.Err, pkgerrors.CodeValidation))

	res = f.orders.RequestReturn(ctx, order.ID, ReturnInput{Reason: "Wrong size"})
	require.True(t, res.OK, res.Message())
	assert.Equal(t, StatusReturnRequested, res.Data.Status)
	stored, _ := f.api.Order(order.ID)
	assert.Equal(t, "Wrong size", stored.ReturnReason)
}

func TestStatusRules(t *testing.T) {
	t.Parallel()
	cases := map[Status][2]bool{
		StatusPending:    {true, false},
		StatusProcessing: {true, false},
		StatusShipped:    {false, false},
		StatusDelivered:  {false, true},
		StatusCancelled:  {false, false},
	}
	for status, want := range cases {
		if got := status.Cancellable(); got != want[0] {
			t.Fatalf("%s cancellable: got %v", status, got)
		}
		if got := status.Returnable(); got != want[1] {
			t.Fatalf("%s returnable: got %v", status, got)
		}
	}
}
