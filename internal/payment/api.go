// Package payment talks to the payment endpoints of the API and models the
// provider's hosted checkout.
package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/validate"
)

const (
	endpointInitiate = "/payment/initiate"
	endpointVerify   = "/payment/verify"
	endpointSuccess  = "/payment/success"
	endpointFailure  = "/payment/failure"
	endpointDetails  = "/payment/details/%s"
)

type Requester interface {
	Do(ctx context.Context, method, endpoint string, body, out any) error
}

type API struct {
	api Requester
}

func NewAPI(api Requester) (*API, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment requires an api client")
	}
	return &API{api: api}, nil
}

// Initiate creates a provider order for orderID.
func (a *API) Initiate(ctx context.Context, orderID string) (*Initiation, error) {
	if err := requireOrder(orderID); err != nil {
		return nil, err
	}
	var out Initiation
	if err := a.api.Do(ctx, http.MethodPost, endpointInitiate, map[string]string{"orderId": orderID}, &out); err != nil {
		return nil, err
	}
	if out.ProviderOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "payment could not be initiated")
	}
	if out.OrderID == "" {
		out.OrderID = orderID
	}
	return &out, nil
}

// Verify asks the API to check the provider signature. A callback missing
// any identifier is rejected without a call.
func (a *API) Verify(ctx context.Context, orderID string, cb Callback) error {
	if err := requireOrder(orderID); err != nil {
		return err
	}
	if err := validate.Struct(cb); err != nil {
		return err
	}
	return a.api.Do(ctx, http.MethodPost, endpointVerify, callbackPayload{OrderID: orderID, Callback: cb}, nil)
}

// NotifySuccess tells the API the provider captured the payment.
func (a *API) NotifySuccess(ctx context.Context, orderID string, cb Callback) error {
	if err := requireOrder(orderID); err != nil {
		return err
	}
	return a.api.Do(ctx, http.MethodPost, endpointSuccess, callbackPayload{OrderID: orderID, Callback: cb}, nil)
}

// ReportFailure records a dismissed or failed payment.
func (a *API) ReportFailure(ctx context.Context, orderID, providerOrderID, reason string) error {
	if err := requireOrder(orderID); err != nil {
		return err
	}
	body := failurePayload{OrderID: orderID, ProviderOrderID: providerOrderID, Reason: reason}
	return a.api.Do(ctx, http.MethodPost, endpointFailure, body, nil)
}

func (a *API) Details(ctx context.Context, orderID string) (*Details, error) {
	if err := requireOrder(orderID); err != nil {
		return nil, err
	}
	var out Details
	if err := a.api.Do(ctx, http.MethodGet, fmt.Sprintf(endpointDetails, url.PathEscape(orderID)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func requireOrder(orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return nil
}
