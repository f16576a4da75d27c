// Package apiclient is the only network boundary of the storefront client. It
// resolves endpoints against the configured base URL, injects the bearer
// token from local storage, and turns non-2xx responses into typed errors
// carrying the server's message. It never retries.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 64 << 10

// TokenSource yields the bearer token, if any, for the next request.
type TokenSource interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

type Params struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	Tokens     TokenSource
	Logger     *logger.Logger
	Metrics    *metrics.RequestMetrics
	HTTPClient *http.Client
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	tokens    TokenSource
	logg      *logger.Logger
	metrics   *metrics.RequestMetrics
}

func New(params Params) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(params.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api base url is required")
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   params.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{
		baseURL:   base,
		userAgent: params.UserAgent,
		http:      httpClient,
		tokens:    params.Tokens,
		logg:      logg,
		metrics:   params.Metrics,
	}, nil
}

// Envelope is the server's standard response wrapper.
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any) error {
	return c.Do(ctx, http.MethodPut, endpoint, body, out)
}

func (c *Client) Delete(ctx context.Context, endpoint string, body, out any) error {
	return c.Do(ctx, http.MethodDelete, endpoint, body, out)
}

// Do performs one request. When the body is an envelope, out receives its
// data member; otherwise out receives the whole body. A 2xx envelope with
// success=false is treated as a failure carrying its message.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) error {
	start := time.Now()
	err := c.do(ctx, method, endpoint, body, out)
	c.metrics.ObserveDuration(endpoint, method, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(endpoint, method, string(pkgerrors.As(err).Code()))
		logCtx := c.logg.WithFields(ctx, map[string]any{"method": method, "endpoint": endpoint})
		c.logg.Debug(c.logg.WithFields(logCtx, pkgerrors.Dump(err).Fields()), "api.request_failed")
		return err
	}
	c.metrics.IncSuccess(endpoint, method)
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeNetwork, ctxErr, "request cancelled")
		}
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fmt.Sprintf("%s %s", method, endpoint))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return pkgerrors.FromStatus(resp.StatusCode, serverMessage(raw))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "reading response body")
	}
	return decodeBody(resp.StatusCode, raw, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(endpoint), reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

func (c *Client) token(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	token, ok, err := c.tokens.Get(ctx, storage.KeyToken)
	if err != nil {
		c.logg.WarnErr(ctx, "api.token_lookup_failed", err)
		return ""
	}
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func decodeBody(status int, raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env Envelope
	isEnvelope := json.Unmarshal(raw, &env) == nil && (env.Success != nil || env.Data != nil)
	if isEnvelope && env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return pkgerrors.FromStatus(http.StatusUnprocessableEntity, msg)
	}
	if out == nil {
		return nil
	}

	payload := raw
	if isEnvelope && env.Data != nil {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, fmt.Sprintf("decoding response (status %d)", status))
	}
	return nil
}

func serverMessage(raw []byte) string {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}
