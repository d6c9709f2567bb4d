package ops

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/suite"

	"vitae/internal/auth/revocation"
	"vitae/internal/auth/tokens"
	"vitae/internal/platform/logger"
	"vitae/internal/platform/middleware"
)

const key = "ops-test-key"

type RouterSuite struct {
	suite.Suite
	registry *prometheus.Registry
	tokens   *tokens.Service
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.registry = prometheus.NewRegistry()
	promauto.With(s.registry).NewCounter(prometheus.CounterOpts{Name: "vitae_test_total", Help: "test"}).Inc()
	s.tokens = tokens.New(key, revocation.NewMemory())
}

func (s *RouterSuite) serve(h http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) token(jti string) string {
	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokens.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(key))
	s.Require().NoError(err)
	return t
}

func (s *RouterSuite) TestHealthz() {
	rec := s.serve(NewRouter(WithGatherer(s.registry)), "/healthz", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *RouterSuite) TestReadyz() {
	s.Run("all checks pass", func() {
		h := NewRouter(WithGatherer(s.registry), WithCheck("db", func(context.Context) error { return nil }))
		rec := s.serve(h, "/readyz", "")
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"db":"ok"}`, rec.Body.String())
	})

	s.Run("a failing check", func() {
		h := NewRouter(
			WithGatherer(s.registry),
			WithCheck("db", func(context.Context) error { return nil }),
			WithCheck("redis", func(context.Context) error { return errors.New("connection refused") }),
		)
		rec := s.serve(h, "/readyz", "")
		s.Equal(http.StatusServiceUnavailable, rec.Code)
		s.JSONEq(`{"db":"ok","redis":"connection refused"}`, rec.Body.String())
	})
}

func (s *RouterSuite) TestMetrics() {
	s.Run("open without a guard", func() {
		rec := s.serve(NewRouter(WithGatherer(s.registry)), "/metrics", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "vitae_test_total 1")
	})

	s.Run("guarded by bearer tokens", func() {
		h := NewRouter(
			WithGatherer(s.registry),
			WithMetricsGuard(middleware.RequireToken(s.tokens, logger.New("error"))),
		)

		s.Equal(http.StatusUnauthorized, s.serve(h, "/metrics", "").Code)
		s.Equal(http.StatusUnauthorized, s.serve(h, "/metrics", "garbage").Code)

		valid := s.token("jti-ok")
		s.Equal(http.StatusOK, s.serve(h, "/metrics", valid).Code)

		s.Require().NoError(s.tokens.Revoke(context.Background(), valid))
		rec := s.serve(h, "/metrics", valid)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Contains(rec.Body.String(), "unauthorized")
	})
}
