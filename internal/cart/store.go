// Package cart holds the shopper's cart state and synchronises it with the
// authenticated or guest cart on the server.
package cart

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront/internal/session"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/angelmondragon/storefront/pkg/validate"
)

// Requester is the API client surface the cart needs.
type Requester interface {
	Do(ctx context.Context, method, endpoint string, body, out any) error
}

type Params struct {
	API    Requester
	Tokens storage.Store
	Guest  *session.Guest
	Logger *logger.Logger
}

// Store owns the cart state. The mutex guards state only and is never held
// across a network call; concurrent mutations race at the server and the
// follow-up fetch settles the result.
type Store struct {
	api    Requester
	tokens storage.Store
	guest  *session.Guest
	logg   *logger.Logger

	mu    sync.RWMutex
	state State
}

func NewStore(p Params) (*Store, error) {
	if p.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart requires an api client")
	}
	if p.Tokens == nil || p.Guest == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart requires local storage and a guest session")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		api:    p.API,
		tokens: p.Tokens,
		guest:  p.Guest,
		logg:   logg,
		state:  State{Items: []Item{}, Status: StatusIdle},
	}, nil
}

// State returns a copy of the current cart state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Authenticated reports whether an auth token is present in local storage.
func (s *Store) Authenticated(ctx context.Context) bool {
	token, ok, err := s.tokens.Get(ctx, storage.KeyToken)
	if err != nil {
		s.logg.WarnErr(ctx, "cart.token_lookup_failed", err)
		return false
	}
	return ok && strings.TrimSpace(token) != ""
}

// Fetch loads the authoritative cart. A guest without a session id has an
// empty cart and no request is made.
func (s *Store) Fetch(ctx context.Context) pkgerrors.Result[State] {
	if err := s.refresh(ctx); err != nil {
		s.mutate(func(st *State) {
			st.Status = StatusFailed
			st.Err = pkgerrors.UserMessage(err)
		})
		return pkgerrors.Fail[State](err)
	}
	return pkgerrors.Ok(s.State())
}

// Refresh is Fetch for callers that only care about the error.
func (s *Store) Refresh(ctx context.Context) error {
	return s.Fetch(ctx).Err
}

func (s *Store) AddItem(ctx context.Context, input AddInput) pkgerrors.Result[State] {
	input.ProductID = strings.TrimSpace(input.ProductID)
	if err := validate.Struct(input); err != nil {
		return pkgerrors.Fail[State](err)
	}
	sc, err := s.scope(ctx, true)
	if err != nil {
		return pkgerrors.Fail[State](err)
	}

	snapshot := s.begin(func(st *State) {
		key := input.Selection.Key(input.ProductID)
		if idx := st.find(key); idx >= 0 {
			st.Items[idx].Quantity += input.Quantity
		} else {
			st.Items = append(st.Items, Item{
				ProductID: input.ProductID,
				Name:      input.Name,
				Price:     input.Price,
				Quantity:  input.Quantity,
				Selection: input.Selection,
			})
		}
		st.recompute()
	})

	payload := linePayload{ProductID: input.ProductID, Quantity: input.Quantity, Selection: input.Selection}
	callErr := s.api.Do(ctx, http.MethodPost, sc.add(), payload, nil)
	return s.reconcile(ctx, actionAdd, snapshot, callErr)
}

// UpdateQuantity sets a line's quantity. Quantities below one are clamped to one.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, sel types.Selection, quantity int) pkgerrors.Result[State] {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return pkgerrors.Fail[State](pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
	}
	if quantity < 1 {
		quantity = 1
	}
	sc, err := s.scope(ctx, true)
	if err != nil {
		return pkgerrors.Fail[State](err)
	}

	key := sel.Key(productID)
	snapshot := s.begin(func(st *State) {
		if idx := st.find(key); idx >= 0 {
			st.Items[idx].Quantity = quantity
			st.recompute()
		}
	})

	payload := linePayload{ProductID: productID, Quantity: quantity, Selection: sel}
	callErr := s.api.Do(ctx, http.MethodPut, sc.update(), payload, nil)
	return s.reconcile(ctx, actionUpdate, snapshot, callErr)
}

func (s *Store) RemoveItem(ctx context.Context, productID string, sel types.Selection) pkgerrors.Result[State] {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return pkgerrors.Fail[State](pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
	}
	sc, err := s.scope(ctx, true)
	if err != nil {
		return pkgerrors.Fail[State](err)
	}

	key := sel.Key(productID)
	snapshot := s.begin(func(st *State) {
		if idx := st.find(key); idx >= 0 {
			st.Items = append(st.Items[:idx], st.Items[idx+1:]...)
			st.recompute()
		}
	})

	payload := linePayload{ProductID: productID, Selection: sel}
	callErr := s.api.Do(ctx, http.MethodDelete, sc.remove(), payload, nil)
	return s.reconcile(ctx, actionRemove, snapshot, callErr)
}

// Clear empties the cart. Local state changes only after the server agrees.
func (s *Store) Clear(ctx context.Context) pkgerrors.Result[State] {
	sc, err := s.scope(ctx, false)
	if err != nil {
		return pkgerrors.Fail[State](err)
	}
	snapshot := s.begin(nil)
	var callErr error
	if sc.base != "" {
		callErr = s.api.Do(ctx, http.MethodDelete, sc.clear(), nil, nil)
	}
	return s.reconcile(ctx, actionClear, snapshot, callErr)
}

// Merge moves the guest cart into the authenticated cart, forgets the guest
// session and refetches. It must run once, right after login.
func (s *Store) Merge(ctx context.Context, guestSessionID string) pkgerrors.Result[State] {
	guestSessionID = strings.TrimSpace(guestSessionID)
	if guestSessionID == "" {
		return pkgerrors.Fail[State](pkgerrors.New(pkgerrors.CodeValidation, "guest session id is required"))
	}
	if !s.Authenticated(ctx) {
		return pkgerrors.Fail[State](pkgerrors.New(pkgerrors.CodeUnauthorized, "login required to merge carts"))
	}

	ctx = s.logg.WithSessionID(ctx, guestSessionID)
	snapshot := s.begin(nil)
	callErr := s.api.Do(ctx, http.MethodPost, endpointMerge, map[string]string{"guestSessionId": guestSessionID}, nil)
	if callErr == nil {
		if err := s.guest.Clear(ctx); err != nil {
			s.logg.WarnErr(ctx, "cart.guest_session_clear_failed", err)
		}
		s.logg.Info(ctx, "cart.guest_merged")
	}
	return s.reconcile(ctx, actionMerge, snapshot, callErr)
}

func (s *Store) ApplyDiscount(ctx context.Context, code string) pkgerrors.Result[State] {
	code = strings.TrimSpace(code)
	if code == "" {
		return pkgerrors.Fail[State](pkgerrors.New(pkgerrors.CodeValidation, "discount code is required"))
	}
	sc, err := s.scope(ctx, true)
	if err != nil {
		return pkgerrors.Fail[State](err)
	}
	snapshot := s.begin(nil)
	callErr := s.api.Do(ctx, http.MethodPost, sc.applyDiscount(), map[string]string{"code": code}, nil)
	return s.reconcile(ctx, actionDiscount, snapshot, callErr)
}

func (s *Store) RemoveDiscount(ctx context.Context) pkgerrors.Result[State] {
	sc, err := s.scope(ctx, true)
	if err != nil {
		return pkgerrors.Fail[State](err)
	}
	snapshot := s.begin(nil)
	callErr := s.api.Do(ctx, http.MethodDelete, sc.removeDiscount(), nil, nil)
	return s.reconcile(ctx, actionDiscount, snapshot, callErr)
}

// ValidateDiscount asks the server whether code would apply to the current
// subtotal without changing the cart.
func (s *Store) ValidateDiscount(ctx context.Context, code string) pkgerrors.Result[DiscountCheck] {
	code = strings.TrimSpace(code)
	if code == "" {
		return pkgerrors.Fail[DiscountCheck](pkgerrors.New(pkgerrors.CodeValidation, "discount code is required"))
	}
	body := map[string]any{"code": code, "subtotal": s.State().Totals.Subtotal}
	var out DiscountCheck
	if err := s.api.Do(ctx, http.MethodPost, endpointValidateDiscount, body, &out); err != nil {
		return pkgerrors.Fail[DiscountCheck](err)
	}
	if out.Code == "" {
		out.Code = code
	}
	return pkgerrors.Ok(out)
}

// Reset drops local state, e.g. on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = State{Items: []Item{}, Status: StatusIdle}
	s.mu.Unlock()
}

// scope resolves the endpoint family. With create=false a guest without a
// session id gets an empty scope instead of a fresh id.
func (s *Store) scope(ctx context.Context, create bool) (scope, error) {
	if s.Authenticated(ctx) {
		return userScope(), nil
	}
	var (
		id  string
		err error
	)
	if create {
		id, err = s.guest.ID(ctx)
	} else {
		id, err = s.guest.Current(ctx)
	}
	if err != nil {
		return scope{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving guest session")
	}
	if id == "" {
		return scope{guest: true}, nil
	}
	return guestScope(id), nil
}

func (s *Store) refresh(ctx context.Context) error {
	sc, err := s.scope(ctx, false)
	if err != nil {
		return err
	}
	if sc.base == "" {
		s.replace(State{Items: []Item{}, Status: StatusReady})
		return nil
	}
	var out serverCart
	if err := s.api.Do(ctx, http.MethodGet, sc.cart(), nil, &out); err != nil {
		return err
	}
	s.replace(out.state())
	return nil
}

// begin marks the cart loading, applies an optional optimistic change and
// returns the state from before it.
func (s *Store) begin(optimistic func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state.clone()
	s.state.Status = StatusLoading
	s.state.Err = ""
	if optimistic != nil {
		optimistic(&s.state)
	}
	return snapshot
}

func (s *Store) mutate(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
}

func (s *Store) replace(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
