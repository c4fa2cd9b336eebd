// Package handler wires the memo routes: one backend fetch per request,
// normalization, and the response envelopes the memo page expects.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"memo-gateway/internal/backend"
	"memo-gateway/internal/memo/metrics"
	"memo-gateway/internal/memo/preview"
	"memo-gateway/internal/memo/session"
	"memo-gateway/internal/platform/audit"
	"memo-gateway/pkg/platform/httputil"
	"memo-gateway/pkg/requestcontext"
)

const (
	defaultPreviewTimeout = 60 * time.Second
	// Session fetches ride out long backend analysis runs.
	defaultSessionTimeout = 300 * time.Second
)

// Handler serves the decision-memo routes.
type Handler struct {
	fetcher backend.Fetcher
	preview *preview.Assembler
	session *session.Resolver
	metrics *metrics.Metrics
	audit   audit.Publisher
	logger  *slog.Logger

	previewTimeout time.Duration
	sessionTimeout time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithPreviewTimeout overrides the outbound deadline on the preview route.
func WithPreviewTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.previewTimeout = d
	}
}

// WithSessionTimeout overrides the outbound deadline on the session route.
func WithSessionTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.sessionTimeout = d
	}
}

// New constructs a memo handler with its dependencies.
func New(fetcher backend.Fetcher, assembler *preview.Assembler, resolver *session.Resolver, m *metrics.Metrics, auditPub audit.Publisher, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		fetcher:        fetcher,
		preview:        assembler,
		session:        resolver,
		metrics:        m,
		audit:          auditPub,
		logger:         logger,
		previewTimeout: defaultPreviewTimeout,
		sessionTimeout: defaultSessionTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the memo endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/decision-memo/preview/{intakeID}", h.HandlePreview)
	r.Get("/api/decision-memo/session/{intakeID}", h.HandleSession)
}

// HandlePreview handles GET /api/decision-memo/preview/{intakeID}.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	intakeID := chi.URLParam(r, "intakeID")

	httputil.NoStore(w)

	res, err := h.fetch(ctx, r, intakeID, h.previewTimeout)
	if err != nil {
		h.metrics.BackendFailures.Inc()
		h.logger.ErrorContext(ctx, "preview fetch failed",
			"request_id", requestID,
			"intake_id", intakeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		h.metrics.ObserveRequest("preview", strconv.Itoa(http.StatusBadGateway), time.Since(start))
		return
	}

	if res.StatusCode == http.StatusUnauthorized {
		h.passThrough(w, res)
		h.metrics.ObserveRequest("preview", strconv.Itoa(res.StatusCode), time.Since(start))
		return
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		// The legacy intake path has no stored preview until analysis lands,
		// so its 404 means "poll again", not "gone".
		if res.StatusCode == http.StatusNotFound && !strings.HasPrefix(intakeID, "sfo_") {
			h.metrics.PreviewNotReady.Inc()
			httputil.WriteJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "Preview not ready yet",
				"retry":   true,
			})
		} else {
			h.writeBackendError(w, res)
		}
		h.metrics.ObserveRequest("preview", strconv.Itoa(res.StatusCode), time.Since(start))
		return
	}

	assembled := h.preview.Assemble(intakeID, res.Document)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"preview": assembled,
	})

	h.audit.Publish(ctx, audit.Event{
		IntakeID:  intakeID,
		Route:     "preview",
		Subject:   requestcontext.Subject(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		RequestID: requestID,
	})
	h.metrics.ObserveRequest("preview", strconv.Itoa(http.StatusOK), time.Since(start))
	h.logger.InfoContext(ctx, "preview served",
		"request_id", requestID,
		"intake_id", intakeID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// HandleSession handles GET /api/decision-memo/session/{intakeID}.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	intakeID := chi.URLParam(r, "intakeID")

	httputil.NoStore(w)

	res, err := h.fetch(ctx, r, intakeID, h.sessionTimeout)
	if err != nil {
		h.metrics.BackendFailures.Inc()
		h.logger.ErrorContext(ctx, "session fetch failed",
			"request_id", requestID,
			"intake_id", intakeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		h.metrics.ObserveRequest("session", strconv.Itoa(http.StatusBadGateway), time.Since(start))
		return
	}

	if res.StatusCode == http.StatusUnauthorized {
		h.passThrough(w, res)
		h.metrics.ObserveRequest("session", strconv.Itoa(res.StatusCode), time.Since(start))
		return
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		h.writeBackendError(w, res)
		h.metrics.ObserveRequest("session", strconv.Itoa(res.StatusCode), time.Since(start))
		return
	}

	resp := h.session.Resolve(intakeID, res.Document)
	status, _ := resp["status"].(string)
	if resp.Has("via_negativa") {
		h.metrics.ViaNegativaActivations.Inc()
	}
	h.metrics.SessionsByStatus.WithLabelValues(status).Inc()

	httputil.WriteJSON(w, http.StatusOK, resp)

	h.audit.Publish(ctx, audit.Event{
		IntakeID:  intakeID,
		Route:     "session",
		Status:    status,
		Subject:   requestcontext.Subject(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		RequestID: requestID,
	})
	h.metrics.ObserveRequest("session", strconv.Itoa(http.StatusOK), time.Since(start))
	h.logger.InfoContext(ctx, "session served",
		"request_id", requestID,
		"intake_id", intakeID,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (h *Handler) fetch(ctx context.Context, r *http.Request, intakeID string, timeout time.Duration) (*backend.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return h.fetcher.FetchPreview(ctx, intakeID, backend.Forward{
		Authorization: r.Header.Get("Authorization"),
		ClientIP:      requestcontext.ClientIP(ctx),
	})
}

// passThrough relays a backend response verbatim. Used for 401 so the client
// shows its login prompt instead of a generic error.
func (h *Handler) passThrough(w http.ResponseWriter, res *backend.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	_, _ = w.Write(res.Body)
}

// writeBackendError preserves the backend's status code and wraps whatever
// detail it returned.
func (h *Handler) writeBackendError(w http.ResponseWriter, res *backend.Result) {
	body := map[string]any{
		"success": false,
		"error":   "decision-memo backend error",
	}
	if res.Document != nil {
		if msg := res.Document.String("error"); msg != "" {
			body["error"] = msg
		}
		body["details"] = map[string]any(res.Document)
	} else if len(res.Body) > 0 {
		body["details"] = string(res.Body)
	}
	httputil.WriteJSON(w, res.StatusCode, body)
}
