// Package backend is the HTTP client for the externally owned decision-memo
// analysis service. One outbound fetch per inbound request; no retries here —
// the memo page owns polling.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"memo-gateway/internal/memo/wire"
	dErrors "memo-gateway/pkg/domain-errors"
)

// Responses larger than this are truncated; memo payloads are far smaller.
const maxResponseBytes = 8 << 20

// Forward carries the caller-derived values re-injected into the upstream
// request. The client IP is forwarded so the backend's geolocation sees the
// real client rather than the edge proxy.
type Forward struct {
	Authorization string
	ClientIP      string
}

// Result is one backend response. A non-2xx status is data, not an error:
// the handler decides how each status maps to the client.
type Result struct {
	StatusCode int
	Body       []byte
	// Document is the decoded JSON object, or nil when the body was not one.
	Document wire.Document
}

// Fetcher is the outbound dependency handlers are wired against.
type Fetcher interface {
	FetchPreview(ctx context.Context, intakeID string, fwd Forward) (*Result, error)
}

// Client implements Fetcher against a real backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger for fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New constructs a backend client. Per-request deadlines come from the
// caller's context, so the transport itself carries no timeout.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		tracer:     otel.Tracer("memo-gateway/backend"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchPreview retrieves the raw preview payload for one intake.
func (c *Client) FetchPreview(ctx context.Context, intakeID string, fwd Forward) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "backend.fetch_preview",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("memo.intake_id", intakeID)),
	)
	defer span.End()

	endpoint := c.baseURL + "/api/decision-memo/preview/" + url.PathEscape(intakeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if fwd.Authorization != "" {
		req.Header.Set("Authorization", fwd.Authorization)
	}
	if fwd.ClientIP != "" {
		req.Header.Set("X-Forwarded-For", fwd.ClientIP)
		req.Header.Set("X-Real-IP", fwd.ClientIP)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "decision-memo backend unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "reading decision-memo backend response")
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	result := &Result{StatusCode: resp.StatusCode, Body: body}
	if doc, decodeErr := wire.Decode(body); decodeErr == nil {
		result.Document = doc
	} else {
		// Non-object bodies are tolerated; normalization treats them as an
		// empty payload.
		c.logger.DebugContext(ctx, "backend body is not a JSON object",
			"intake_id", intakeID,
			"status", resp.StatusCode,
		)
	}

	c.logger.DebugContext(ctx, "backend fetch complete",
		"intake_id", intakeID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
