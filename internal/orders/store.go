// Package orders reads the shopper's orders and requests cancellations and
// returns. Local status only changes after the API accepts the transition.
package orders

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/angelmondragon/storefront/pkg/validate"
)

const (
	endpointOrders = "/orders"
	endpointSearch = "/orders/search"
	endpointStats  = "/orders/stats"
	endpointOrder  = "/orders/%s"
	endpointCancel = "/orders/%s/cancel"
	endpointReturn = "/orders/%s/return"
)

type Requester interface {
	Do(ctx context.Context, method, endpoint string, body, out any) error
}

// Store caches orders seen in this session so detail views reflect
// cancellations and returns without a refetch.
type Store struct {
	api  Requester
	logg *logger.Logger

	mu    sync.RWMutex
	cache map[string]Order
}

func NewStore(api Requester, logg *logger.Logger) (*Store, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders require an api client")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{api: api, logg: logg, cache: map[string]Order{}}, nil
}

// Create validates the address and payment method before placing the order.
func (s *Store) Create(ctx context.Context, input CreateInput) pkgerrors.Result[Order] {
	input.ShippingAddress = input.ShippingAddress.Normalized()
	if err := validate.Struct(input); err != nil {
		return pkgerrors.Fail[Order](err)
	}
	var out Order
	if err := s.api.Do(ctx, http.MethodPost, endpointOrders, input, &out); err != nil {
		return pkgerrors.Fail[Order](err)
	}
	if out.ID == "" {
		return pkgerrors.Fail[Order](pkgerrors.New(pkgerrors.CodeUpstream, "order was not created"))
	}
	s.remember(out)
	s.logg.Info(s.logg.WithOrderID(ctx, out.ID), "orders.created")
	return pkgerrors.Ok(out)
}

func (s *Store) List(ctx context.Context, query ListQuery) pkgerrors.Result[Page] {
	q := url.Values{}
	query.Page.Apply(q)
	if query.Status != "" {
		q.Set("status", string(query.Status))
	}
	var out Page
	if err := s.api.Do(ctx, http.MethodGet, endpointOrders+"?"+q.Encode(), nil, &out); err != nil {
		return pkgerrors.Fail[Page](err)
	}
	if out.Orders == nil {
		out.Orders = []Order{}
	}
	if out.Pagination.Limit == 0 {
		out.Pagination = pagination.MetaFor(query.Page, len(out.Orders))
	}
	s.remember(out.Orders...)
	return pkgerrors.Ok(out)
}

func (s *Store) Get(ctx context.Context, id string) pkgerrors.Result[Order] {
	id = strings.TrimSpace(id)
	if id == "" {
		return pkgerrors.Fail[Order](pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
	}
	var out Order
	if err := s.api.Do(ctx, http.MethodGet, fmt.Sprintf(endpointOrder, url.PathEscape(id)), nil, &out); err != nil {
		return pkgerrors.Fail[Order](err)
	}
	s.remember(out)
	return pkgerrors.Ok(out)
}

func (s *Store) Search(ctx context.Context, term string) pkgerrors.Result[[]Order] {
	term = strings.TrimSpace(term)
	if term == "" {
		return pkgerrors.Fail[[]Order](pkgerrors.New(pkgerrors.CodeValidation, "search term is required"))
	}
	var out struct {
		Orders []Order `json:"orders"`
	}
	if err := s.api.Do(ctx, http.MethodGet, endpointSearch+"?"+url.Values{"q": {term}}.Encode(), nil, &out); err != nil {
		return pkgerrors.Fail[[]Order](err)
	}
	if out.Orders == nil {
		out.Orders = []Order{}
	}
	s.remember(out.Orders...)
	return pkgerrors.Ok(out.Orders)
}

func (s *Store) Stats(ctx context.Context) pkgerrors.Result[Stats] {
	var out Stats
	if err := s.api.Do(ctx, http.MethodGet, endpointStats, nil, &out); err != nil {
		return pkgerrors.Fail[Stats](err)
	}
	if out.ByStatus == nil {
		out.ByStatus = map[Status]int{}
	}
	return pkgerrors.Ok(out)
}

// Cancel moves the order to cancelled. Orders past processing are rejected
// before any request is made.
func (s *Store) Cancel(ctx context.Context, id, reason string) pkgerrors.Result[Order] {
	current, err := s.lookup(ctx, id)
	if err != nil {
		return pkgerrors.Fail[Order](err)
	}
	if !current.Status.Cancellable() {
		return pkgerrors.Fail[Order](pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("order %s cannot be cancelled while %s", current.OrderNumber, current.Status)))
	}
	body := map[string]string{"reason": strings.TrimSpace(reason)}
	return s.transition(ctx, current, http.MethodPut, fmt.Sprintf(endpointCancel, url.PathEscape(current.ID)), body, StatusCancelled)
}

// RequestReturn asks for a return of a delivered order.
func (s *Store) RequestReturn(ctx context.Context, id string, input ReturnInput) pkgerrors.Result[Order] {
	input.Reason = strings.TrimSpace(input.Reason)
	if err := validate.Struct(input); err != nil {
		return pkgerrors.Fail[Order](err)
	}
	current, err := s.lookup(ctx, id)
	if err != nil {
		return pkgerrors.Fail[Order](err)
	}
	if !current.Status.Returnable() {
		return pkgerrors.Fail[Order](pkgerrors.New(pkgerrors.CodeConflict, "only delivered orders can be returned"))
	}
	return s.transition(ctx, current, http.MethodPost, fmt.Sprintf(endpointReturn, url.PathEscape(current.ID)), input, StatusReturnRequested)
}

// Cached returns an order seen earlier in this session.
func (s *Store) Cached(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.cache[id]
	return o, ok
}

func (s *Store) transition(ctx context.Context, current Order, method, endpoint string, body any, next Status) pkgerrors.Result[Order] {
	ctx = s.logg.WithOrderID(ctx, current.ID)
	var out Order
	if err := s.api.Do(ctx, method, endpoint, body, &out); err != nil {
		s.logg.WarnErr(s.logg.WithField(ctx, "target_status", string(next)), "orders.transition_failed", err)
		return pkgerrors.Fail[Order](err)
	}
	if out.ID == "" {
		out = current
	}
	out.Status = next
	s.remember(out)
	s.logg.Info(s.logg.WithField(ctx, "status", string(next)), "orders.status_changed")
	return pkgerrors.Ok(out)
}

func (s *Store) lookup(ctx context.Context, id string) (Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if o, ok := s.Cached(id); ok {
		return o, nil
	}
	return s.Get(ctx, id).Unwrap()
}

func (s *Store) remember(orders ...Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range orders {
		if o.ID != "" {
			s.cache[o.ID] = o
		}
	}
}
