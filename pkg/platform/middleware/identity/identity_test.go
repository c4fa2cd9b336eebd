package identity

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memo-gateway/pkg/requestcontext"
)

const testSigningKey = "unit-test-signing-key"

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return signed
}

func runWithAuth(t *testing.T, authorization string) string {
	t.Helper()
	var subject string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = requestcontext.Subject(r.Context())
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	Middleware(testSigningKey, logger)(inner).ServeHTTP(httptest.NewRecorder(), req)
	return subject
}

func TestMiddleware(t *testing.T) {
	t.Run("valid token sets subject", func(t *testing.T) {
		token := signToken(t, Claims{
			UserID: "principal-77",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		assert.Equal(t, "principal-77", runWithAuth(t, "Bearer "+token))
	})

	t.Run("registered subject used when user_id absent", func(t *testing.T) {
		token := signToken(t, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "sub-42",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		assert.Equal(t, "sub-42", runWithAuth(t, "Bearer "+token))
	})

	t.Run("garbage token is ignored, not rejected", func(t *testing.T) {
		assert.Empty(t, runWithAuth(t, "Bearer not-a-jwt"))
	})

	t.Run("missing header is ignored", func(t *testing.T) {
		assert.Empty(t, runWithAuth(t, ""))
	})

	t.Run("expired token is ignored", func(t *testing.T) {
		token := signToken(t, Claims{
			UserID: "principal-77",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})
		assert.Empty(t, runWithAuth(t, "Bearer "+token))
	})
}
