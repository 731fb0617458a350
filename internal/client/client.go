// Package client talks to the wealthnet HTTP API. It satisfies the
// interaction package's NetworkSource and IntroPathSource so the explorer
// can run against a remote server.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vanshika/wealthnet/internal/domain"
)

// RequestIDHeader carries the per-request id to the server.
const RequestIDHeader = "X-Request-Id"

// ErrInvalidBaseURL is returned by New for unusable server addresses.
var ErrInvalidBaseURL = errors.New("client: invalid base url")

// StatusError describes a non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s (request %s)", e.StatusCode, msg, e.RequestID)
}

// Client is an HTTP implementation of the network and intro-path sources.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api_client")
	return c, nil
}

// FetchNetwork implements interaction.NetworkSource.
func (c *Client) FetchNetwork(ctx context.Context, q domain.NetworkQuery) (domain.Network, error) {
	values := url.Values{}
	values.Set("ownerId", q.OwnerID)
	if len(q.Filters.NodeTypes) > 0 {
		types := make([]string, len(q.Filters.NodeTypes))
		for i, t := range q.Filters.NodeTypes {
			types[i] = string(t)
		}
		values.Set("nodeTypes", strings.Join(types, ","))
	}
	if len(q.Filters.Sectors) > 0 {
		values.Set("sectors", strings.Join(q.Filters.Sectors, ","))
	}
	if q.Filters.OnlyClients {
		values.Set("onlyClients", "true")
	}

	var network domain.Network
	if err := c.get(ctx, "/api/v1/network", values, &network); err != nil {
		return domain.Network{}, networkError(err)
	}
	return network, nil
}

// FindIntroPath implements interaction.IntroPathSource.
func (c *Client) FindIntroPath(ctx context.Context, q domain.IntroPathQuery) (domain.IntroPathResult, error) {
	values := url.Values{}
	values.Set("ownerId", q.OwnerID)
	values.Set("targetPersonId", q.TargetPersonID)
	if q.MaxHops > 0 {
		values.Set("maxHops", strconv.Itoa(q.MaxHops))
	}

	var result domain.IntroPathResult
	if err := c.get(ctx, "/api/v1/network/intro-path", values, &result); err != nil {
		return domain.IntroPathResult{}, pathError(err)
	}
	return result, nil
}

// Health probes the server's /healthz endpoint.
func (c *Client) Health(ctx context.Context) error {
	var payload map[string]any
	if err := c.get(ctx, "/healthz", nil, &payload); err != nil {
		return networkError(err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, values url.Values, dst any) error {
	u := c.baseURL.JoinPath(path)
	u.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "path", path, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(), "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readStatusError(resp, requestID)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func readStatusError(resp *http.Response, requestID string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error  string `json:"error"`
		Status string `json:"status"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Status != "":
			msg = payload.Status
		}
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg, RequestID: requestID}
}

// networkError reports every failure as retryable except cancellation.
func networkError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrDataFetch, err)
}

func pathError(err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", domain.ErrPathNotFound, err)
		case http.StatusUnprocessableEntity, http.StatusBadRequest:
			return fmt.Errorf("%w: %w", domain.ErrInvalidPathRequest, err)
		}
	}
	return networkError(err)
}
