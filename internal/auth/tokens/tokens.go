// Package tokens validates bearer JWTs and revokes them by ID.
package tokens

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vitae/internal/auth/revocation"
	dErrors "vitae/pkg/domain-errors"
)

// Claims are the JWT claims carried by operator tokens.
type Claims struct {
	PersonID string `json:"person_id,omitempty"`
	jwt.RegisteredClaims
}

// Service checks HMAC-signed tokens against a revocation list.
type Service struct {
	signingKey []byte
	issuer     string
	revoked    revocation.Store
	logger     *slog.Logger
	clock      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIssuer requires tokens to carry iss.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

func New(signingKey string, revoked revocation.Store, opts ...Option) *Service {
	s := &Service{
		signingKey: []byte(signingKey),
		revoked:    revoked,
		logger:     slog.Default(),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(s.clock),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)
	return claims, err
}

// Check validates token and rejects it when its ID has been revoked.
func (s *Service) Check(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if claims.ID == "" {
		return claims, nil
	}
	revoked, err := s.revoked.Contains(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}
	return claims, nil
}

// Revoke adds the ID of token to the revocation list until the token
// expires. Tokens that are already expired need no entry.
func (s *Service) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil
	}
	if err != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if claims.ID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "token has no jti")
	}
	if claims.ExpiresAt == nil {
		return dErrors.New(dErrors.CodeBadRequest, "token has no expiry")
	}
	ttl := claims.ExpiresAt.Sub(s.clock())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Put(ctx, claims.ID, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.logger.InfoContext(ctx, "token revoked", "jti", claims.ID, "ttl", ttl)
	return nil
}
