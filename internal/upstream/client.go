package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nebula-retail/storefront/internal/obs"
)

// ErrNotConfigured indicates the service has no base URL. The storefront
// reports this before attempting any request.
var ErrNotConfigured = errors.New("service base URL is not configured")

// ErrUnreachable indicates a connection-level failure talking to the service.
var ErrUnreachable = errors.New("failed to connect to service")

// ErrNotFound indicates the service answered 404 for the requested resource.
var ErrNotFound = errors.New("resource not found")

// StatusError reports a non-success HTTP status from an upstream service.
type StatusError struct {
	Service string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s service responded with status %d", e.Service, e.Code)
}

// Client issues single best-effort JSON requests against one named upstream
// service. There is no retry and no request de-duplication; failures are
// surfaced to the caller who decides whether the user re-submits.
type Client struct {
	Service string
	BaseURL string
	HTTP    *http.Client
}

// New builds a client for the named service. The transport is instrumented
// with otelhttp so outbound calls join the request trace.
func New(service, baseURL string, timeout time.Duration) *Client {
	return &Client{
		Service: service,
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Configured reports whether the client has a base URL to call.
func (c *Client) Configured() bool {
	return c != nil && strings.TrimSpace(c.BaseURL) != ""
}

// GetJSON performs a GET against path and decodes the response into dst.
func (c *Client) GetJSON(ctx context.Context, path string, dst any) error {
	return c.do(ctx, http.MethodGet, path, nil, dst)
}

// PostJSON performs a POST with a JSON body and decodes the response into dst.
func (c *Client) PostJSON(ctx context.Context, path string, body any, dst any) error {
	return c.do(ctx, http.MethodPost, path, body, dst)
}

// Ping issues a GET against the service root, used by readiness probes.
func (c *Client) Ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.do(ctx, http.MethodGet, "/", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	if !c.Configured() {
		return fmt.Errorf("%s: %w", c.serviceName(), ErrNotConfigured)
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.serviceName(), err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	c.observe(start, err == nil && resp.StatusCode < 400)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", c.serviceName(), ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", c.serviceName(), ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Service: c.serviceName(), Code: resp.StatusCode}
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", c.serviceName(), err)
	}
	return nil
}

func (c *Client) serviceName() string {
	if c == nil || c.Service == "" {
		return "upstream"
	}
	return c.Service
}

func (c *Client) observe(start time.Time, ok bool) {
	if obs.UpstreamRequestsTotal == nil || obs.UpstreamRequestDuration == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	obs.UpstreamRequestsTotal.WithLabelValues(c.serviceName(), result).Inc()
	obs.UpstreamRequestDuration.WithLabelValues(c.serviceName()).Observe(obs.DurationMillis(time.Since(start)))
}
