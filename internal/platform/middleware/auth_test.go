package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitae/internal/auth/tokens"
	"vitae/internal/platform/logger"
)

type checkerFunc func(ctx context.Context, token string) (*tokens.Claims, error)

func (f checkerFunc) Check(ctx context.Context, token string) (*tokens.Claims, error) {
	return f(ctx, token)
}

func TestRequireToken(t *testing.T) {
	checker := checkerFunc(func(_ context.Context, token string) (*tokens.Claims, error) {
		if token != "good" {
			return nil, errors.New("invalid token")
		}
		return &tokens.Claims{PersonID: "7"}, nil
	})

	var seen *tokens.Claims
	h := RequireToken(checker, logger.New("error"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Claims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", want: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", want: http.StatusUnauthorized},
		{name: "rejected token", header: "Bearer bad", want: http.StatusUnauthorized},
		{name: "accepted token", header: "Bearer good", want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, "7", seen.PersonID)
			} else {
				assert.Nil(t, seen)
				assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)
			}
		})
	}
}
