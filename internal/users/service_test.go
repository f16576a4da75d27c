package users

import (
	"context"
	"net/http"
	"testing"

	"github.com/angelmondragon/storefront/internal/fakeapi"
	"github.com/angelmondragon/storefront/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *fakeapi.Server) {
	t.Helper()
	api := fakeapi.New(t)
	local := storage.NewMemory()
	id := api.AddUser("Asha", "asha@example.com", "secret")
	require.NoError(t, local.Set(context.Background(), storage.KeyToken, api.Token(id)))
	client, err := apiclient.New(apiclient.Params{BaseURL: api.URL(), Tokens: local, HTTPClient: api.Client()})
	require.NoError(t, err)
	svc, err := NewService(client, nil)
	require.NoError(t, err)
	return svc, api
}

func ptr(s string) *string { return &s }

func TestProfileIsCached(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	if _, ok := svc.Cached(); ok {
		t.Fatal("expected empty cache")
	}
	res := svc.Profile(context.Background())
	require.True(t, res.OK, "profile: %v", res.Err)
	assert.Equal(t, "asha@example.com", res.Data.Email)

	cached, ok := svc.Cached()
	require.True(t, ok)
	assert.Equal(t, res.Data.ID, cached.ID)

	svc.Reset()
	_, ok = svc.Cached()
	assert.False(t, ok)
}

func TestUpdateProfileValidatesBeforeCall(t *testing.T) {
	t.Parallel()
	svc, api := newService(t)

	cases := map[string]UpdateInput{
		"empty":       {},
		"blank name":  {Name: ptr("   ")},
		"bad email":   {Email: ptr("asha-at-example")},
		"short phone": {Phone: ptr("12345")},
		"bad address": {Addresses: []types.Address{{FullName: "Asha"}}},
	}
	for name, input := range cases {
		res := svc.UpdateProfile(context.Background(), input)
		if res.OK {
			t.Fatalf("%s: expected validation failure", name)
		}
		if !pkgerrors.IsCode(res.Err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, res.Err)
		}
	}
	assert.Equal(t, 0, api.Calls(http.MethodPut, "/user/profile"))
}

func TestUpdateProfileSendsChangedFields(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	res := svc.UpdateProfile(context.Background(), UpdateInput{
		Name:  ptr("  Asha Rao "),
		Email: ptr("Asha.Rao@Example.com"),
		Phone: ptr("98765 43210"),
		Addresses: []types.Address{{
			FullName:   "Asha Rao",
			Phone:      "9876543210",
			Line1:      "12 MG Road",
			City:       "Bengaluru",
			State:      "KA",
			PostalCode: "560001",
		}},
	})
	require.True(t, res.OK, "update: %v", res.Err)
	assert.Equal(t, "Asha Rao", res.Data.Name)
	assert.Equal(t, "asha.rao@example.com", res.Data.Email)
	assert.Equal(t, "9876543210", res.Data.Phone)

	addr, ok := res.Data.DefaultAddress()
	require.True(t, ok)
	assert.Equal(t, "India", addr.Country)
}

func TestUpdateProfileSurfacesServerMessage(t *testing.T) {
	t.Parallel()
	svc, api := newService(t)
	api.AddUser("Ravi", "ravi@example.com", "secret")

	res := svc.UpdateProfile(context.Background(), UpdateInput{Email: ptr("ravi@example.com")})
	if res.OK {
		t.Fatal("expected conflict")
	}
	assert.Equal(t, "Email already in use", pkgerrors.UserMessage(res.Err))
}
