// Package identity extracts the caller's identity from a bearer token for
// logging and audit purposes. The decision-memo backend remains the auth
// authority: this middleware never rejects a request, and the raw
// Authorization header is still forwarded upstream untouched. A 401 from the
// backend passes through so the page can show its login prompt.
package identity

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"memo-gateway/pkg/requestcontext"
)

// Claims are the access-token claims issued by the platform auth service.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Middleware parses and verifies an HS256 bearer token when present, placing
// the subject into the request context. Invalid tokens are logged and
// otherwise ignored.
func Middleware(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	key := []byte(signingKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims := &Claims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenUnverifiable
				}
				return key, nil
			})
			if err != nil || !parsed.Valid {
				logger.DebugContext(r.Context(), "bearer token did not verify locally; forwarding as-is",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			subject := claims.UserID
			if subject == "" {
				subject = claims.Subject
			}
			ctx := requestcontext.WithSubject(r.Context(), subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
