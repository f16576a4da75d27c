// Package wishlist keeps the shopper's saved products in sync with the
// server and moves them into the cart.
package wishlist

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/angelmondragon/storefront/pkg/validate"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const (
	endpointWishlist   = "/wishlist"
	endpointAdd        = "/wishlist/add"
	endpointRemove     = "/wishlist/remove/%s"
	endpointToggle     = "/wishlist/toggle"
	endpointCount      = "/wishlist/count"
	endpointMoveToCart = "/wishlist/move-to-cart/%s"
	endpointClear      = "/wishlist/clear"

	defaultConcurrency = 4
)

type Requester interface {
	Do(ctx context.Context, method, endpoint string, body, out any) error
}

// ProductSource loads full product detail for enrichment.
type ProductSource interface {
	Product(ctx context.Context, id string) (*catalog.Product, error)
}

// CartRefresher is told to refetch after items move into the cart.
type CartRefresher interface {
	Refresh(ctx context.Context) error
}

type Params struct {
	API         Requester
	Products    ProductSource
	Cart        CartRefresher
	Tokens      storage.Store
	Logger      *logger.Logger
	Concurrency int
}

type Store struct {
	api         Requester
	products    ProductSource
	cart        CartRefresher
	tokens      storage.Store
	logg        *logger.Logger
	concurrency int

	mu     sync.RWMutex
	state  State
	exists map[string]bool
}

func NewStore(p Params) (*Store, error) {
	if p.API == nil || p.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wishlist requires an api client and product source")
	}
	if p.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wishlist requires local storage")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Store{
		api:         p.API,
		products:    p.Products,
		cart:        p.Cart,
		tokens:      p.Tokens,
		logg:        logg,
		concurrency: concurrency,
		state:       State{Items: []Item{}, Status: StatusIdle},
		exists:      map[string]bool{},
	}, nil
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Contains answers from the local existence cache.
func (s *Store) Contains(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exists[strings.TrimSpace(productID)]
}

// Create makes sure the account has a wishlist.
func (s *Store) Create(ctx context.Context) pkgerrors.Result[State] {
	if err := s.requireLogin(ctx); err != nil {
		return pkgerrors.Fail[State](err)
	}
	var out serverWishlist
	if err := s.api.Do(ctx, http.MethodPost, endpointWishlist, nil, &out); err != nil {
		return pkgerrors.Fail[State](err)
	}
	s.load(ctx, out)
	return pkgerrors.Ok(s.State())
}

// Fetch loads and enriches the wishlist.
func (s *Store) Fetch(ctx context.Context) pkgerrors.Result[State] {
	if err := s.requireLogin(ctx); err != nil {
		return pkgerrors.Fail[State](err)
	}
	s.setStatus(StatusLoading, "")
	var out serverWishlist
	if err := s.api.Do(ctx, http.MethodGet, endpointWishlist, nil, &out); err != nil {
		s.setStatus(StatusFailed, pkgerrors.UserMessage(err))
		return pkgerrors.Fail[State](err)
	}
	s.load(ctx, out)
	return pkgerrors.Ok(s.State())
}

func (s *Store) Add(ctx context.Context, input AddInput) pkgerrors.Result[State] {
	input.ProductID = strings.TrimSpace(input.ProductID)
	if err := validate.Struct(input); err != nil {
		return pkgerrors.Fail[State](err)
	}
	if err := s.requireLogin(ctx); err != nil {
		return pkgerrors.Fail[State](err)
	}
	snapshot := s.apply(func(st *State, exists map[string]bool) {
		if st.find(input.ProductID) < 0 {
			st.Items = append(st.Items, Item{ProductID: input.ProductID, Price: input.Price, Selection: input.Selection})
		}
		exists[input.ProductID] = true
	})
	if err := s.api.Do(ctx, http.MethodPost, endpointAdd, input, nil); err != nil {
		s.restore(snapshot, err)
		return pkgerrors.Fail[State](err)
	}
	return s.Fetch(ctx)
}

func (s *Store) Remove(ctx context.Context, productID string) pkgerrors.Result[State] {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return pkgerrors.Fail[State](pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
	}
	if err := s.requireLogin(ctx); err != nil {
		return pkgerrors.Fail[State](err)
	}
	snapshot := s.apply(func(st *State, exists map[string]bool) {
		if idx := st.find(productID); idx >= 0 {
			st.Items = append(st.Items[:idx], st.Items[idx+1:]...)
		}
		delete(exists, productID)
	})
	if err := s.api.Do(ctx, http.MethodDelete, fmt.Sprintf(endpointRemove, url.PathEscape(productID)), nil, nil); err != nil {
		if res := s.Fetch(ctx); !res.OK {
			s.restore(snapshot, err)
		} else {
			s.setStatus(StatusFailed, pkgerrors.UserMessage(err))
		}
		return pkgerrors.Fail[State](err)
	}
	return pkgerrors.Ok(s.resync(ctx))
}

// Toggle adds the product when the local cache says it is absent and removes
// it otherwise. The server's reported action wins if it disagrees.
func (s *Store) Toggle(ctx context.Context, input AddInput) pkgerrors.Result[ToggleResult] {
	input.ProductID = strings.TrimSpace(input.ProductID)
	if err := validate.Struct(input); err != nil {
		return pkgerrors.Fail[ToggleResult](err)
	}
	if err := s.requireLogin(ctx); err != nil {
		return pkgerrors.Fail[ToggleResult](err)
	}

	adding := !s.Contains(input.ProductID)
	snapshot := s.apply(func(st *State, exists map[string]bool) {
		idx := st.find(input.ProductID)
		switch {
		case adding && idx < 0:
			st.Items = append(st.Items, Item{ProductID: input.ProductID, Price: input.Price, Selection: input.Selection})
		case !adding && idx >= 0:
			st.Items = append(st.Items[:idx], st.Items[idx+1:]...)
		}
		exists[input.ProductID] = adding
	})

	var out ToggleResult
	if err := s.api.Do(ctx, http.MethodPost, endpointToggle, input, &out); err != nil {
		s.restore(snapshot, err)
		return pkgerrors.Fail[ToggleResult](err)
	}

	switch out.Action {
	case ActionAdded:
		out.InWishlist = true
	case ActionRemoved:
		out.InWishlist = false
	default:
		out.Action = actionFor(out.InWishlist)
	}
	if out.InWishlist != adding {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"product_id": input.ProductID,
			"expected":   actionFor(adding),
			"action":     out.Action,
		}), "wishlist.toggle_corrected")
	}
	s.settle(input, out.InWishlist)
	s.resync(ctx)
	return pkgerrors.Ok(out)
}

// settle makes the local items and existence cache agree with the server's
// answer, so a failed resync cannot leave them contradicting each other.
func (s *Store) settle(input AddInput, inWishlist bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.state.find(input.ProductID)
	switch {
	case inWishlist && idx < 0:
		s.state.Items = append(s.state.Items, Item{ProductID: input.ProductID, Price: input.Price, Selection: input.Selection})
	case !inWishlist && idx >= 0:
		s.state.Items = append(s.state.Items[:idx], s.state.Items[idx+1:]...)
	}
	s.exists[input.ProductID] = inWishlist
}

func actionFor(inWishlist bool) string {
	if inWishlist {
		return ActionAdded
	}
	return ActionRemoved
}

func (s *Store) Count(ctx context.Context) pkgerrors.Result[int] {
	if err := s.requireLogin(ctx); err != nil {
		return pkgerrors.Fail[int](err)
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := s.api.Do(ctx, http.MethodGet, endpointCount, nil, &out); err != nil {
		return pkgerrors.Fail[int](err)
	}
	return pkgerrors.Ok(out.Count)
}

// MoveToCart moves one item into the cart with the size, color and image it
// was saved with.
func (s *Store) MoveToCart(ctx context.Context, productID string, quantity int) pkgerrors.Result[State] {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return pkgerrors.Fail[State](pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
	}
	if err := s.requireLogin(ctx); err != nil {
		return pkgerrors.Fail[State](err)
	}
	if err := s.moveOne(ctx, productID, quantity); err != nil {
		s.setStatus(StatusReady, pkgerrors.UserMessage(err))
		return pkgerrors.Fail[State](err)
	}
	s.refreshCart(ctx)
	return pkgerrors.Ok(s.resync(ctx))
}

// MoveAllToCart fans out one move per item. Failures are counted, never
// abort the batch; the result is OK only when every item moved.
func (s *Store) MoveAllToCart(ctx context.Context) pkgerrors.Result[MoveSummary] {
	if err := s.requireLogin(ctx); err != nil {
		return pkgerrors.Fail[MoveSummary](err)
	}

	items := s.State().Items
	var (
		mu      sync.Mutex
		summary = MoveSummary{Errors: map[string]string{}}
		errs    error
	)
	g := errgroup.Group{}
	g.SetLimit(s.concurrency)
	for _, item := range items {
		productID := item.ProductID
		g.Go(func() error {
			err := s.moveOne(ctx, productID, 1)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				summary.Errors[productID] = pkgerrors.UserMessage(err)
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", productID, err))
				return nil
			}
			summary.Moved++
			return nil
		})
	}
	_ = g.Wait()

	if summary.Moved > 0 {
		s.refreshCart(ctx)
		s.resync(ctx)
	}
	if summary.Failed == 0 {
		summary.Errors = nil
		return pkgerrors.Ok(summary)
	}
	s.logg.WarnErr(s.logg.WithFields(ctx, map[string]any{"moved": summary.Moved, "failed": summary.Failed}), "wishlist.move_all_partial", errs)
	err := pkgerrors.Wrap(pkgerrors.CodePartialFailure, errs,
		fmt.Sprintf("moved %d of %d items to cart", summary.Moved, summary.Moved+summary.Failed)).WithDetails(summary.Errors)
	return pkgerrors.Result[MoveSummary]{Data: summary, Err: err}
}

// Clear empties the wishlist once the server confirms.
func (s *Store) Clear(ctx context.Context) pkgerrors.Result[State] {
	if err := s.requireLogin(ctx); err != nil {
		return pkgerrors.Fail[State](err)
	}
	if err := s.api.Do(ctx, http.MethodDelete, endpointClear, nil, nil); err != nil {
		s.setStatus(StatusFailed, pkgerrors.UserMessage(err))
		return pkgerrors.Fail[State](err)
	}
	s.mu.Lock()
	s.state.Items = []Item{}
	s.state.Status = StatusReady
	s.state.Err = ""
	s.exists = map[string]bool{}
	s.mu.Unlock()
	return pkgerrors.Ok(s.State())
}

// Reset drops local state, e.g. on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = State{Items: []Item{}, Status: StatusIdle}
	s.exists = map[string]bool{}
	s.mu.Unlock()
}

func (s *Store) moveOne(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	payload := movePayload{Quantity: quantity}
	s.mu.RLock()
	if idx := s.state.find(productID); idx >= 0 {
		payload.Selection = s.state.Items[idx].Selection
	}
	s.mu.RUnlock()

	if err := s.api.Do(ctx, http.MethodPost, fmt.Sprintf(endpointMoveToCart, url.PathEscape(productID)), payload, nil); err != nil {
		return err
	}
	s.mu.Lock()
	if idx := s.state.find(productID); idx >= 0 {
		s.state.Items = append(s.state.Items[:idx], s.state.Items[idx+1:]...)
	}
	delete(s.exists, productID)
	s.mu.Unlock()
	return nil
}

func (s *Store) refreshCart(ctx context.Context) {
	if s.cart == nil {
		return
	}
	if err := s.cart.Refresh(ctx); err != nil {
		s.logg.WarnErr(ctx, "wishlist.cart_refresh_failed", err)
	}
}

func (s *Store) load(ctx context.Context, out serverWishlist) {
	items := out.Items
	if items == nil {
		items = []Item{}
	}
	s.enrich(ctx, items)
	exists := make(map[string]bool, len(items))
	for _, item := range items {
		exists[item.ProductID] = true
	}
	s.mu.Lock()
	s.state = State{ID: out.ID, Items: items, Status: StatusReady}
	s.exists = exists
	s.mu.Unlock()
}

func (s *Store) requireLogin(ctx context.Context) error {
	token, ok, err := s.tokens.Get(ctx, storage.KeyToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading auth token")
	}
	if !ok || strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in to use your wishlist")
	}
	return nil
}

// apply runs an optimistic change and returns the state from before it.
func (s *Store) apply(fn func(*State, map[string]bool)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state.clone()
	s.state.Status = StatusLoading
	s.state.Err = ""
	fn(&s.state, s.exists)
	return snapshot
}

func (s *Store) restore(snapshot State, cause error) {
	exists := make(map[string]bool, len(snapshot.Items))
	for _, item := range snapshot.Items {
		exists[item.ProductID] = true
	}
	s.mu.Lock()
	s.state = snapshot
	s.state.Status = StatusFailed
	s.state.Err = pkgerrors.UserMessage(cause)
	s.exists = exists
	s.mu.Unlock()
}

// resync refetches after a successful mutation. If that fails the optimistic
// state stands until the next fetch.
func (s *Store) resync(ctx context.Context) State {
	res := s.Fetch(ctx)
	if res.OK {
		return res.Data
	}
	s.logg.WarnErr(ctx, "wishlist.resync_failed", res.Err)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Status = StatusReady
	s.state.Err = ""
	return s.state.clone()
}

func (s *Store) setStatus(status Status, msg string) {
	s.mu.Lock()
	s.state.Status = status
	s.state.Err = msg
	s.mu.Unlock()
}
