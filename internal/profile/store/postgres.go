package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vitae/internal/profile/models"
	id "vitae/pkg/domain"
	dErrors "vitae/pkg/domain-errors"
	"vitae/pkg/email"
	"vitae/pkg/platform/sentinel"
	"vitae/pkg/platform/tx"
)

// Postgres is the Store backed by PostgreSQL. Inside RunInTx every query runs
// on the transaction carried by the context; outside it, on the pool.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithPostgresTxTimeout overrides the default transaction timeout.
func WithPostgresTxTimeout(d time.Duration) PostgresOption {
	return func(s *Postgres) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	s := &Postgres{db: db, timeout: defaultTxTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Postgres) q(ctx context.Context) tx.Querier {
	return tx.Or(ctx, s.db)
}

// RunInTx begins a transaction, hands fn a context carrying it and commits
// when fn succeeds. A context that already carries a transaction joins it.
func (s *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context, st Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := tx.From(ctx); ok {
		return fn(ctx, s)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx), s); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// normalizedEmail is the SQL form of email.Normalize. The btrim set matches
// the Latin-1 whitespace strings.TrimSpace removes.
const normalizedEmail = `lower(btrim(email, E' \t\n\x0b\f\r\u0085\u00a0'))`

const personColumns = `id, email, full_name, phone, linkedin, github, website, short_bio,
	password_hash, document_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*models.Person, error) {
	var (
		p   models.Person
		doc sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Phone, &p.LinkedIn, &p.GitHub, &p.Website,
		&p.ShortBio, &p.PasswordHash, &doc, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if doc.Valid {
		d := id.DocumentID(doc.Int64)
		p.DocumentID = &d
	}
	return &p, nil
}

func nullableDocument(d *id.DocumentID) any {
	if d == nil {
		return nil
	}
	return int64(*d)
}

func (s *Postgres) PersonsByEmail(ctx context.Context, address string) ([]*models.Person, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE `+normalizedEmail+` = $1 ORDER BY id`,
		email.Normalize(address))
	if err != nil {
		return nil, fmt.Errorf("query persons by email: %w", err)
	}
	defer rows.Close()

	var out []*models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return out, nil
}

func (s *Postgres) Person(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	p, err := scanPerson(s.q(ctx).QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1`, int64(personID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find person: %w", err)
	}
	return p, nil
}

func (s *Postgres) CreatePerson(ctx context.Context, p *models.Person) error {
	query := `
		INSERT INTO persons (email, full_name, phone, linkedin, github, website, short_bio,
			password_hash, document_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var rowID int64
	err := s.q(ctx).QueryRowContext(ctx, query, email.Normalize(p.Email), p.FullName, p.Phone, p.LinkedIn, p.GitHub,
		p.Website, p.ShortBio, p.PasswordHash, nullableDocument(p.DocumentID), p.CreatedAt, p.UpdatedAt).Scan(&rowID)
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	p.ID = id.PersonID(rowID)
	return nil
}

func (s *Postgres) UpdatePerson(ctx context.Context, p *models.Person) error {
	query := `
		UPDATE persons SET email = $2, full_name = $3, phone = $4, linkedin = $5, github = $6,
			website = $7, short_bio = $8, password_hash = $9, document_id = $10, updated_at = $11
		WHERE id = $1
	`
	res, err := s.q(ctx).ExecContext(ctx, query, int64(p.ID), email.Normalize(p.Email), p.FullName, p.Phone, p.LinkedIn,
		p.GitHub, p.Website, p.ShortBio, p.PasswordHash, nullableDocument(p.DocumentID), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return expectRow(res, "update person")
}

func (s *Postgres) DeletePerson(ctx context.Context, personID id.PersonID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, int64(personID))
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return expectRow(res, "delete person")
}

func (s *Postgres) DuplicateEmails(ctx context.Context) ([]string, error) {
	query := `
		SELECT ` + normalizedEmail + ` AS normalized
		FROM persons
		WHERE ` + normalizedEmail + ` <> ''
		GROUP BY normalized
		HAVING COUNT(*) > 1
		ORDER BY normalized
	`
	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query duplicate emails: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan duplicate email: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duplicate emails: %w", err)
	}
	return out, nil
}

const documentColumns = `id, title, source_path, uploaded_by, status, llm_prompt, llm_response, uploaded_at`

func (s *Postgres) Document(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	var (
		d          models.Document
		uploadedBy sql.NullInt64
	)
	err := s.q(ctx).QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, int64(docID)).
		Scan(&d.ID, &d.Title, &d.SourcePath, &uploadedBy, &d.Status, &d.LLMPrompt, &d.LLMResponse, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	if uploadedBy.Valid {
		u := id.PersonID(uploadedBy.Int64)
		d.UploadedBy = &u
	}
	return &d, nil
}

func nullablePerson(p *id.PersonID) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func (s *Postgres) CreateDocument(ctx context.Context, d *models.Document) error {
	query := `
		INSERT INTO documents (title, source_path, uploaded_by, status, llm_prompt, llm_response, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var rowID int64
	err := s.q(ctx).QueryRowContext(ctx, query, d.Title, d.SourcePath, nullablePerson(d.UploadedBy),
		string(d.Status), d.LLMPrompt, d.LLMResponse, d.UploadedAt).Scan(&rowID)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	d.ID = id.DocumentID(rowID)
	return nil
}

func (s *Postgres) UpdateDocument(ctx context.Context, d *models.Document) error {
	query := `
		UPDATE documents SET title = $2, source_path = $3, uploaded_by = $4, status = $5,
			llm_prompt = $6, llm_response = $7
		WHERE id = $1
	`
	res, err := s.q(ctx).ExecContext(ctx, query, int64(d.ID), d.Title, d.SourcePath,
		nullablePerson(d.UploadedBy), string(d.Status), d.LLMPrompt, d.LLMResponse)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return expectRow(res, "update document")
}

func (s *Postgres) AddVisualization(ctx context.Context, v *models.Visualization) error {
	query := `
		INSERT INTO visualizations (document_id, type, file_path, created_at)
		SELECT $1::bigint, $2::text, $3::text, $4::timestamptz
		WHERE EXISTS (SELECT 1 FROM documents WHERE id = $1::bigint)
		RETURNING id
	`
	err := s.q(ctx).QueryRowContext(ctx, query, int64(v.DocumentID), string(v.Type), v.FilePath, v.CreatedAt).Scan(&v.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert visualization: %w", err)
	}
	return nil
}

func (s *Postgres) Visualizations(ctx context.Context, docID id.DocumentID) ([]models.Visualization, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, document_id, type, file_path, created_at FROM visualizations WHERE document_id = $1 ORDER BY id`,
		int64(docID))
	if err != nil {
		return nil, fmt.Errorf("query visualizations: %w", err)
	}
	defer rows.Close()

	var out []models.Visualization
	for rows.Next() {
		var v models.Visualization
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Type, &v.FilePath, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan visualization: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visualizations: %w", err)
	}
	return out, nil
}

func expectRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
