package tokens

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vitae/internal/auth/revocation"
	"vitae/internal/auth/revocation/mocks"
	dErrors "vitae/pkg/domain-errors"
)

const signingKey = "test-signing-key"

type TokensSuite struct {
	suite.Suite
	ctx     context.Context
	ctrl    *gomock.Controller
	now     time.Time
	revoked *revocation.Memory
	service *Service
}

func TestTokensSuite(t *testing.T) {
	suite.Run(t, new(TokensSuite))
}

func (s *TokensSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.now = time.Now().UTC().Truncate(time.Second)
	clock := func() time.Time { return s.now }
	s.revoked = revocation.NewMemory(revocation.WithMemoryClock(clock))
	s.service = New(signingKey, s.revoked, WithClock(clock), WithIssuer("vitae"))
}

func (s *TokensSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *TokensSuite) sign(key, jti, issuer string, ttl time.Duration) string {
	claims := Claims{
		PersonID: "42",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(s.now),
			ExpiresAt: jwt.NewNumericDate(s.now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	s.Require().NoError(err)
	return token
}

func (s *TokensSuite) TestCheck() {
	s.Run("valid token", func() {
		claims, err := s.service.Check(s.ctx, s.sign(signingKey, "jti-1", "vitae", time.Hour))
		s.Require().NoError(err)
		s.Equal("42", claims.PersonID)
	})

	s.Run("wrong key", func() {
		_, err := s.service.Check(s.ctx, s.sign("other-key", "jti-1", "vitae", time.Hour))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("wrong issuer", func() {
		_, err := s.service.Check(s.ctx, s.sign(signingKey, "jti-1", "someone", time.Hour))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("expired", func() {
		_, err := s.service.Check(s.ctx, s.sign(signingKey, "jti-1", "vitae", -time.Minute))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Contains(err.Error(), "expired")
	})

	s.Run("garbage", func() {
		_, err := s.service.Check(s.ctx, "not-a-jwt")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *TokensSuite) TestRevoke() {
	s.Run("revoked token is rejected until it expires", func() {
		token := s.sign(signingKey, "jti-2", "vitae", time.Hour)
		s.Require().NoError(s.service.Revoke(s.ctx, token))

		_, err := s.service.Check(s.ctx, token)
		s.Require().Error(err)
		s.Contains(err.Error(), "revoked")

		other := s.sign(signingKey, "jti-3", "vitae", time.Hour)
		_, err = s.service.Check(s.ctx, other)
		s.Require().NoError(err)
	})

	s.Run("expired token needs no entry", func() {
		before := s.revoked.Len()
		s.Require().NoError(s.service.Revoke(s.ctx, s.sign(signingKey, "jti-4", "vitae", -time.Minute)))
		s.Equal(before, s.revoked.Len())
	})

	s.Run("token without jti", func() {
		err := s.service.Revoke(s.ctx, s.sign(signingKey, "", "vitae", time.Hour))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("ttl matches the remaining lifetime", func() {
		store := mocks.NewMockStore(s.ctrl)
		svc := New(signingKey, store, WithClock(func() time.Time { return s.now }))
		store.EXPECT().Put(gomock.Any(), "jti-5", 30*time.Minute).Return(nil)

		s.Require().NoError(svc.Revoke(s.ctx, s.sign(signingKey, "jti-5", "vitae", 30*time.Minute)))
	})
}

func (s *TokensSuite) TestStoreFailures() {
	store := mocks.NewMockStore(s.ctrl)
	svc := New(signingKey, store, WithClock(func() time.Time { return s.now }))
	token := s.sign(signingKey, "jti-6", "vitae", time.Hour)

	store.EXPECT().Contains(gomock.Any(), "jti-6").Return(false, errors.New("redis down"))
	_, err := svc.Check(s.ctx, token)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	store.EXPECT().Put(gomock.Any(), "jti-6", time.Hour).Return(errors.New("redis down"))
	err = svc.Revoke(s.ctx, token)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
