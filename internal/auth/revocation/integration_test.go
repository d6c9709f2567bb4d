//go:build integration

package revocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vitae/internal/auth/revocation"
	"vitae/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	now      time.Time
	store    *revocation.Postgres
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "token_revocations"))
	s.now = time.Now().UTC().Truncate(time.Second)
	s.store = revocation.NewPostgres(s.postgres.DB, revocation.WithPostgresClock(func() time.Time { return s.now }))
}

func (s *PostgresSuite) TestRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, "jti-1", time.Minute))
	s.Require().NoError(s.store.PutMany(ctx, []string{"jti-2", "", "jti-3"}, time.Hour))

	for _, jti := range []string{"jti-1", "jti-2", "jti-3"} {
		revoked, err := s.store.Contains(ctx, jti)
		s.Require().NoError(err)
		s.True(revoked, jti)
	}

	revoked, err := s.store.Contains(ctx, "jti-unknown")
	s.Require().NoError(err)
	s.False(revoked)

	s.now = s.now.Add(2 * time.Minute)
	revoked, err = s.store.Contains(ctx, "jti-1")
	s.Require().NoError(err)
	s.False(revoked)

	pruned, err := s.store.Prune(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), pruned)
}

type RedisSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *revocation.Redis
}

func TestRedisSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSuite))
}

func (s *RedisSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = revocation.NewRedis(s.redis.Client)
}

func (s *RedisSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSuite) TestRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, "jti-1", time.Minute))
	s.Require().NoError(s.store.PutMany(ctx, []string{"jti-2", ""}, time.Minute))

	revoked, err := s.store.Contains(ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.store.Contains(ctx, "jti-2")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.store.Contains(ctx, "jti-unknown")
	s.Require().NoError(err)
	s.False(revoked)

	ttl, err := s.redis.Client.TTL(ctx, "trl:jti:jti-1").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}
