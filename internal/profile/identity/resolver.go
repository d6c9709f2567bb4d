// Package identity maps an extraction onto a Person. The normalized email is
// the only identity key.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vitae/internal/extraction"
	"vitae/internal/profile/models"
	"vitae/internal/profile/store"
	dErrors "vitae/pkg/domain-errors"
	"vitae/pkg/email"
)

// ErrMissingIdentity is returned when neither the extraction nor the caller
// supplies an email.
var ErrMissingIdentity = errors.New("no email available to identify the person")

// Service resolves and registers Persons.
type Service struct {
	tx         store.TxRunner
	logger     *slog.Logger
	clock      func() time.Time
	bcryptCost int
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock sets the time source for created and updated timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// New builds a Service. tx is only needed for Register and Authenticate;
// Resolve runs on the store of the caller's transaction.
func New(tx store.TxRunner, opts ...Option) *Service {
	s := &Service{
		tx:         tx,
		logger:     slog.Default(),
		clock:      time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the Person the extraction belongs to and reports whether it
// was created. The extracted email wins over fallbackEmail. When several
// Persons share the email the lowest ID is used. The Person is linked to doc
// when doc is not its current document.
func (s *Service) Resolve(
	ctx context.Context,
	persons store.PersonStore,
	ext extraction.Result,
	doc *models.Document,
	fallbackEmail string,
) (*models.Person, bool, error) {
	address := email.Normalize(ext.Email.String())
	if address == "" {
		address = email.Normalize(fallbackEmail)
	}
	if address == "" {
		return nil, false, dErrors.Wrap(ErrMissingIdentity, dErrors.CodeValidation, "cannot resolve person")
	}

	now := s.clock().UTC()
	existing, err := persons.PersonsByEmail(ctx, address)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up person")
	}

	if len(existing) > 0 {
		p := existing[0]
		if doc != nil && p.LinkDocument(doc.ID, now) {
			if err := persons.UpdatePerson(ctx, p); err != nil {
				return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to link document")
			}
		}
		if len(existing) > 1 {
			s.logger.WarnContext(ctx, "email shared by several persons",
				"email", address,
				"count", len(existing),
				"person_id", p.ID,
			)
		}
		return p, false, nil
	}

	p := models.NewPerson(address, models.Core{
		FullName: ext.FullName.Trimmed(),
		Phone:    ext.Phone.Trimmed(),
		LinkedIn: ext.LinkedIn.Trimmed(),
		GitHub:   ext.GitHub.Trimmed(),
		Website:  ext.Website.Trimmed(),
		ShortBio: ext.ShortBio.Trimmed(),
	}, now)
	if doc != nil {
		p.LinkDocument(doc.ID, now)
	}
	if err := persons.CreatePerson(ctx, p); err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create person")
	}
	s.logger.InfoContext(ctx, "person created", "person_id", p.ID, "email", address)
	return p, true, nil
}
