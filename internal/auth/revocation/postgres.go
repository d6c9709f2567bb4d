package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Postgres persists revoked token IDs in the token_revocations table.
type Postgres struct {
	db    *sql.DB
	clock Clock
}

type PostgresOption func(*Postgres)

func WithPostgresClock(clock Clock) PostgresOption {
	return func(p *Postgres) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	p := &Postgres{
		db:    db,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Postgres) Put(ctx context.Context, jti string, ttl time.Duration) error {
	if err := validate(jti, ttl); err != nil {
		return err
	}
	query := `
		INSERT INTO token_revocations (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE SET
			expires_at = EXCLUDED.expires_at
	`
	if _, err := p.db.ExecContext(ctx, query, jti, p.clock().Add(ttl)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// PutMany revokes several token IDs with one statement. Empty IDs are
// ignored.
func (p *Postgres) PutMany(ctx context.Context, jtis []string, ttl time.Duration) error {
	valid := make([]string, 0, len(jtis))
	for _, jti := range jtis {
		if jti != "" {
			valid = append(valid, jti)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	if err := validate(valid[0], ttl); err != nil {
		return err
	}
	query := `
		INSERT INTO token_revocations (jti, expires_at)
		SELECT unnest($1::text[]), $2
		ON CONFLICT (jti) DO UPDATE SET
			expires_at = EXCLUDED.expires_at
	`
	if _, err := p.db.ExecContext(ctx, query, pq.Array(valid), p.clock().Add(ttl)); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

func (p *Postgres) Contains(ctx context.Context, jti string) (bool, error) {
	defer observe("postgres", time.Now())
	var expiresAt time.Time
	err := p.db.QueryRowContext(ctx, `SELECT expires_at FROM token_revocations WHERE jti = $1`, jti).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return p.clock().Before(expiresAt), nil
}

// Prune deletes expired rows and returns how many were removed.
func (p *Postgres) Prune(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM token_revocations WHERE expires_at <= $1`, p.clock())
	if err != nil {
		return 0, fmt.Errorf("prune token revocations: %w", err)
	}
	return res.RowsAffected()
}
