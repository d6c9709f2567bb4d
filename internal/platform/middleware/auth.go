package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"vitae/internal/auth/tokens"
)

// TokenChecker validates a bearer token.
type TokenChecker interface {
	Check(ctx context.Context, token string) (*tokens.Claims, error)
}

type contextKeyClaims struct{}

// ContextKeyClaims is exported for tests that inject claims directly.
var ContextKeyClaims = contextKeyClaims{}

// Claims returns the claims of the authenticated caller, or nil.
func Claims(ctx context.Context) *tokens.Claims {
	claims, _ := ctx.Value(ContextKeyClaims).(*tokens.Claims)
	return claims
}

// RequireToken rejects requests without a valid, unrevoked bearer token.
func RequireToken(checker TokenChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", chimw.GetReqID(ctx),
					"path", r.URL.Path,
				)
				unauthorized(w, "Missing or invalid Authorization header")
				return
			}
			claims, err := checker.Check(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", chimw.GetReqID(ctx),
					"path", r.URL.Path,
				)
				unauthorized(w, "Invalid, expired or revoked token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ContextKeyClaims, claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
