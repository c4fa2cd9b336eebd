// Package metadata assigns a request ID and extracts client IP and
// user-agent details into the request context. It runs first in the chain:
// the session route re-injects the resolved IP upstream so the backend's
// geolocation sees the real client rather than the edge proxy.
package metadata

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"memo-gateway/pkg/requestcontext"
)

// Middleware populates request-scoped metadata.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
		ctx = requestcontext.WithClientIP(ctx, ClientIPFromRequest(r))
		ctx = requestcontext.WithUserAgent(ctx, SummarizeUserAgent(r.Header.Get("User-Agent")))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest extracts the real client IP, handling proxies and load
// balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...);
	// the first entry is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// X-Real-IP is set by nginx and similar proxies.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" ("[::1]:port" for IPv6).
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}

// SummarizeUserAgent reduces a raw User-Agent header to a compact
// "browser/version (os)" form for logs and audit events. Bots are tagged so
// crawler traffic is distinguishable in the audit stream.
func SummarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	summary := name
	if version != "" {
		summary = fmt.Sprintf("%s/%s", name, version)
	}
	if os := ua.OS(); os != "" {
		summary = fmt.Sprintf("%s (%s)", summary, os)
	}
	switch {
	case ua.Bot():
		summary += " [bot]"
	case ua.Mobile():
		summary += " [mobile]"
	}
	return summary
}
