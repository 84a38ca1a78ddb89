package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jo-hoe/lensgallery/internal/telemetry"
)

const (
	ImagesPath = "/api/images"
	StatsPath  = "/api/view-stats"

	RequestIDHeader = "X-Request-ID"

	OperationList   = "list"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationStats  = "stats"
)

// API is the remote gallery collection as seen by the client.
type API interface {
	ListEntries(ctx context.Context) ([]Entry, error)
	CreateEntry(ctx context.Context, form *EntryForm) error
	UpdateEntry(ctx context.Context, form *EntryForm) error
	DeleteEntry(ctx context.Context, id string) error
	FetchStats(ctx context.Context) (ViewStats, error)
}

// Client talks to the gallery API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *telemetry.Metrics
	logger     *slog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithMetrics(metrics *telemetry.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = metrics
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the API rooted at baseURL.
// A zero timeout means requests run until they complete or fail.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (c *Client) ListEntries(ctx context.Context) ([]Entry, error) {
	resp, err := c.do(ctx, OperationList, http.MethodGet, ImagesPath, nil, "")
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", OperationList, ErrDecode, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (c *Client) CreateEntry(ctx context.Context, form *EntryForm) error {
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("%s: %w", OperationCreate, err)
	}
	resp, err := c.do(ctx, OperationCreate, http.MethodPost, ImagesPath, body, contentType)
	if err != nil {
		return err
	}
	closeBody(resp)
	return nil
}

func (c *Client) UpdateEntry(ctx context.Context, form *EntryForm) error {
	if form.ID == "" {
		return fmt.Errorf("%s: missing entry id", OperationUpdate)
	}
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("%s: %w", OperationUpdate, err)
	}
	resp, err := c.do(ctx, OperationUpdate, http.MethodPut, entryPath(form.ID), body, contentType)
	if err != nil {
		return err
	}
	closeBody(resp)
	return nil
}

func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%s: missing entry id", OperationDelete)
	}
	resp, err := c.do(ctx, OperationDelete, http.MethodDelete, entryPath(id), nil, "")
	if err != nil {
		return err
	}
	closeBody(resp)
	return nil
}

func (c *Client) FetchStats(ctx context.Context) (ViewStats, error) {
	resp, err := c.do(ctx, OperationStats, http.MethodGet, StatsPath, nil, "")
	if err != nil {
		return ViewStats{}, err
	}
	defer closeBody(resp)

	var stats ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return ViewStats{}, fmt.Errorf("%s: %w: %v", OperationStats, ErrDecode, err)
	}
	return stats, nil
}

// do issues one request. Non-2xx answers are turned into *StatusError and their body is closed.
func (c *Client) do(ctx context.Context, operation, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", operation, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(operation, err, time.Since(start))
		c.logger.Debug("gallery api request failed",
			"operation", operation, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%s: request failed: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
		closeBody(resp)
		c.metrics.ObserveRequest(operation, statusErr, time.Since(start))
		c.logger.Debug("gallery api returned error status",
			"operation", operation, "request_id", requestID, "status", resp.StatusCode)
		return nil, statusErr
	}

	c.metrics.ObserveRequest(operation, nil, time.Since(start))
	c.logger.Debug("gallery api request completed",
		"operation", operation, "request_id", requestID, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}

func entryPath(id string) string {
	return ImagesPath + "/" + url.PathEscape(id)
}

// readErrorMessage extracts {"message": "..."} from an error body, "" if absent.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func closeBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	if err := resp.Body.Close(); err != nil && !errors.Is(err, http.ErrBodyReadAfterClose) {
		slog.Debug("failed to close response body", "error", err)
	}
}
