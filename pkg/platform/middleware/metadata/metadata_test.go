package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"memo-gateway/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{name: "x-forwarded-for single", xff: "203.0.113.7", want: "203.0.113.7"},
		{name: "x-forwarded-for chain takes first", xff: "203.0.113.7, 10.0.0.1, 10.0.0.2", want: "203.0.113.7"},
		{name: "x-real-ip fallback", xri: "198.51.100.4", want: "198.51.100.4"},
		{name: "remote addr strips port", remoteAddr: "192.0.2.9:51234", want: "192.0.2.9"},
		{name: "ipv6 remote addr strips port", remoteAddr: "[::1]:51234", want: "[::1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r))
		})
	}
}

func TestMiddlewarePopulatesContext(t *testing.T) {
	var gotRequestID, gotIP, gotUA string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = requestcontext.RequestID(r.Context())
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	Middleware(inner).ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "203.0.113.7", gotIP)
	assert.Contains(t, gotUA, "Chrome")
}

func TestSummarizeUserAgent(t *testing.T) {
	assert.Empty(t, SummarizeUserAgent(""))
	assert.Contains(t, SummarizeUserAgent("Googlebot/2.1 (+http://www.google.com/bot.html)"), "[bot]")
}
