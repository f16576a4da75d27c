package wishlist

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/fakeapi"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	wishlist *Store
	cart     *cart.Store
	api      *fakeapi.Server
	local    *storage.Memory
	userID   string
}

var green = types.Selection{Size: "L", Color: types.Color{Name: "Green", Hex: "#00ff00"}, Image: "green-2.jpg"}

func newFixture(t *testing.T, loggedIn bool) *fixture {
	t.Helper()
	api := fakeapi.New(t)
	for _, id := range []string{"p1", "p2", "p3"} {
		api.AddProduct(fakeapi.Product{
			ID:    id,
			Name:  "Product " + id,
			Price: decimal.NewFromInt(400),
			Colors: []fakeapi.Color{{Name: "Green", Hex: "#00ff00", Images: []string{id + ".jpg"},
				Sizes: []fakeapi.Size{{Size: "L", Stock: 2}}}},
		})
	}

	local := storage.NewMemory()
	client, err := apiclient.New(apiclient.Params{BaseURL: api.URL(), Tokens: local, HTTPClient: api.Client()})
	require.NoError(t, err)
	products, err := catalog.NewService(client, nil, nil)
	require.NoError(t, err)
	cartStore, err := cart.NewStore(cart.Params{API: client, Tokens: local, Guest: session.NewGuest(local)})
	require.NoError(t, err)
	store, err := NewStore(Params{API: client, Products: products, Cart: cartStore, Tokens: local})
	require.NoError(t, err)

	f := &fixture{wishlist: store, cart: cartStore, api: api, local: local}
	if loggedIn {
		f.userID = api.AddUser("Ravi", "ravi@example.com", "pw")
		require.NoError(t, local.Set(context.Background(), storage.KeyToken, api.Token(f.userID)))
	}
	return f
}

func TestWishlistRequiresLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	res := f.wishlist.Toggle(context.Background(), AddInput{ProductID: "p1"})
	if !pkgerrors.IsCode(res.Err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", res.Err)
	}
	if f.api.TotalCalls() != 0 {
		t.Fatalf("expected no calls, got %d", f.api.TotalCalls())
	}
}

func TestToggleTwiceRestoresMembership(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := context.Background()

	require.False(t, f.wishlist.Contains("p1"))

	first := f.wishlist.Toggle(ctx, AddInput{ProductID: "p1", Selection: green})
	require.True(t, first.OK, first.Message())
	assert.Equal(t, ActionAdded, first.Data.Action)
	assert.True(t, f.wishlist.Contains("p1"))

	second := f.wishlist.Toggle(ctx, AddInput{ProductID: "p1", Selection: green})
	require.True(t, second.OK, second.Message())
	assert.Equal(t, ActionRemoved, second.Data.Action)
	assert.False(t, f.wishlist.Contains("p1"))
	assert.Empty(t, f.wishlist.State().Items)
	assert.Empty(t, f.api.WishlistProducts(f.userID))
}

func TestToggleFollowsServerWhenCacheIsStale(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := context.Background()

	// Another device saved p2; the local cache has not seen it.
	f.api.AddWishlistEntry(f.userID, fakeapi.WishlistItem{ProductID: "p2"})

	res := f.wishlist.Toggle(ctx, AddInput{ProductID: "p2"})
	require.True(t, res.OK, res.Message())
	assert.Equal(t, ActionRemoved, res.Data.Action)
	assert.False(t, f.wishlist.Contains("p2"))
	assert.Empty(t, f.wishlist.State().Items)
}

func TestToggleFailureRollsBack(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	f.api.Fail(http.MethodPost, "/wishlist/toggle", http.StatusServiceUnavailable, "Try again later", 1)

	res := f.wishlist.Toggle(context.Background(), AddInput{ProductID: "p1"})
	require.False(t, res.OK)
	assert.False(t, f.wishlist.Contains("p1"))
	st := f.wishlist.State()
	assert.Empty(t, st.Items)
	assert.Equal(t, StatusFailed, st.Status)
}

func TestMoveToCartKeepsSelection(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := context.Background()

	require.True(t, f.wishlist.Add(ctx, AddInput{ProductID: "p1", Price: decimal.NewFromInt(400), Selection: green}).OK)
	require.True(t, f.wishlist.Contains("p1"))

	fetches := f.api.Calls(http.MethodGet, "/wishlist")
	res := f.wishlist.MoveToCart(ctx, "p1", 1)
	require.True(t, res.OK, res.Message())
	assert.Equal(t, fetches+1, f.api.Calls(http.MethodGet, "/wishlist"), "move should refetch the wishlist")

	assert.Empty(t, f.wishlist.View().Lines)
	assert.False(t, f.wishlist.Contains("p1"))

	lines := f.cart.View().Lines
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, green.Size, lines[0].Size)
	assert.Equal(t, green.Color, lines[0].Color)
	assert.Equal(t, green.Image, lines[0].Image)
}

func TestEnrichmentFailureIsIsolated(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3"} {
		f.api.AddWishlistEntry(f.userID, fakeapi.WishlistItem{ProductID: id, Price: decimal.NewFromInt(400)})
	}
	f.api.Fail(http.MethodGet, "/products/p2", http.StatusInternalServerError, "", 0)

	res := f.wishlist.Fetch(ctx)
	require.True(t, res.OK, res.Message())

	view := f.wishlist.View()
	require.Len(t, view.Lines, 3)
	for _, line := range view.Lines {
		if line.ProductID == "p2" {
			assert.True(t, line.Unavailable)
			assert.Equal(t, UnavailableName, line.Name)
			continue
		}
		assert.False(t, line.Unavailable, line.ProductID)
		assert.Equal(t, "Product "+line.ProductID, line.Name)
		assert.True(t, line.InStock)
		assert.Equal(t, line.ProductID+".jpg", line.Image)
	}
}

func TestMoveAllToCartReportsPartialFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3"} {
		f.api.AddWishlistEntry(f.userID, fakeapi.WishlistItem{ProductID: id, Selection: fakeapi.Selection{Size: "L"}})
	}
	require.True(t, f.wishlist.Fetch(ctx).OK)
	f.api.Fail(http.MethodPost, "/wishlist/move-to-cart/p3", http.StatusBadRequest, "Out of stock", 0)

	fetches := f.api.Calls(http.MethodGet, "/wishlist")
	res := f.wishlist.MoveAllToCart(ctx)
	require.False(t, res.OK)
	assert.Equal(t, fetches+1, f.api.Calls(http.MethodGet, "/wishlist"))
	assert.Equal(t, 2, res.Data.Moved)
	assert.Equal(t, 1, res.Data.Failed)
	assert.Equal(t, "Out of stock", res.Data.Errors["p3"])
	assert.True(t, pkgerrors.IsCode(res.Err, pkgerrors.CodePartialFailure))

	assert.Len(t, f.cart.State().Items, 2)
	remaining := f.wishlist.State().Items
	require.Len(t, remaining, 1)
	assert.Equal(t, "p3", remaining[0].ProductID)
}

func TestCountAndClear(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := context.Background()

	require.True(t, f.wishlist.Create(ctx).OK)
	require.True(t, f.wishlist.Add(ctx, AddInput{ProductID: "p1"}).OK)
	require.True(t, f.wishlist.Add(ctx, AddInput{ProductID: "p2"}).OK)

	count := f.wishlist.Count(ctx)
	require.True(t, count.OK)
	assert.Equal(t, 2, count.Data)

	require.True(t, f.wishlist.Clear(ctx).OK)
	assert.True(t, f.wishlist.View().Empty)
	assert.False(t, f.wishlist.Contains("p1"))
}

func TestAddFailureRollsBack(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := context.Background()

	res := f.wishlist.Add(ctx, AddInput{ProductID: "missing"})
	require.False(t, res.OK)
	assert.True(t, pkgerrors.IsCode(res.Err, pkgerrors.CodeNotFound))
	assert.False(t, f.wishlist.Contains("missing"))
	assert.Empty(t, f.wishlist.State().Items)
}

// actionOnlyAPI answers toggles with just the action and fails every
// wishlist fetch, leaving the store to trust the toggle response alone.
type actionOnlyAPI struct {
	Requester
	action string
}

func (a actionOnlyAPI) Do(ctx context.Context, method, endpoint string, body, out any) error {
	switch {
	case method == http.MethodPost && endpoint == endpointToggle:
		return json.Unmarshal([]byte(`{"action":"`+a.action+`"}`), out)
	case method == http.MethodGet && endpoint == endpointWishlist:
		return pkgerrors.New(pkgerrors.CodeUpstream, "wishlist unavailable")
	}
	return a.Requester.Do(ctx, method, endpoint, body, out)
}

func TestToggleTrustsReportedActionWhenResyncFails(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := context.Background()
	client, err := apiclient.New(apiclient.Params{BaseURL: f.api.URL(), Tokens: f.local, HTTPClient: f.api.Client()})
	require.NoError(t, err)
	products, err := catalog.NewService(client, nil, nil)
	require.NoError(t, err)

	api := &actionOnlyAPI{Requester: client, action: ActionAdded}
	store, err := NewStore(Params{API: api, Products: products, Tokens: f.local})
	require.NoError(t, err)

	res := store.Toggle(ctx, AddInput{ProductID: "p1", Selection: green})
	require.True(t, res.OK, res.Message())
	assert.Equal(t, ActionAdded, res.Data.Action)
	assert.True(t, res.Data.InWishlist)
	assert.True(t, store.Contains("p1"))
	assert.Len(t, store.State().Items, 1)

	api.action = ActionRemoved
	res = store.Toggle(ctx, AddInput{ProductID: "p1", Selection: green})
	require.True(t, res.OK, res.Message())
	assert.False(t, res.Data.InWishlist)
	assert.False(t, store.Contains("p1"))
	assert.Empty(t, store.State().Items)
}

func TestToggleAlignsItemsWithServerDirection(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := context.Background()
	client, err := apiclient.New(apiclient.Params{BaseURL: f.api.URL(), Tokens: f.local, HTTPClient: f.api.Client()})
	require.NoError(t, err)
	products, err := catalog.NewService(client, nil, nil)
	require.NoError(t, err)

	// The cache says absent so the store optimistically adds; the server
	// says it removed the product.
	api := &actionOnlyAPI{Requester: client, action: ActionRemoved}
	store, err := NewStore(Params{API: api, Products: products, Tokens: f.local})
	require.NoError(t, err)

	res := store.Toggle(ctx, AddInput{ProductID: "p2", Selection: green})
	require.True(t, res.OK, res.Message())
	assert.Equal(t, ActionRemoved, res.Data.Action)
	assert.False(t, store.Contains("p2"))
	assert.Empty(t, store.State().Items)
}
