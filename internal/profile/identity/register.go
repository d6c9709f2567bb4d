package identity

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"vitae/internal/profile/models"
	"vitae/internal/profile/store"
	dErrors "vitae/pkg/domain-errors"
	"vitae/pkg/email"
)

const minPasswordLength = 8

// Register creates a Person with a password, or claims the lowest-ID Person
// already holding the email when none of them has a password yet.
func (s *Service) Register(ctx context.Context, address, fullName, password string) (*models.Person, error) {
	address = email.Normalize(address)
	if address == "" || !strings.Contains(address, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	var registered *models.Person
	err = s.tx.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		existing, err := st.PersonsByEmail(ctx, address)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up person")
		}
		for _, p := range existing {
			if p.PasswordHash != "" {
				return dErrors.New(dErrors.CodeConflict, "email already registered")
			}
		}

		now := s.clock().UTC()
		if len(existing) > 0 {
			p := existing[0]
			p.PasswordHash = string(hash)
			if p.FullName == "" {
				p.FullName = strings.TrimSpace(fullName)
			}
			p.UpdatedAt = now
			if err := st.UpdatePerson(ctx, p); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to claim person")
			}
			registered = p
			return nil
		}

		p := models.NewPerson(address, models.Core{FullName: strings.TrimSpace(fullName)}, now)
		p.PasswordHash = string(hash)
		if err := st.CreatePerson(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create person")
		}
		registered = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "person registered", "person_id", registered.ID)
	return registered, nil
}

// Authenticate returns the registered Person for the email when password
// matches its hash.
func (s *Service) Authenticate(ctx context.Context, address, password string) (*models.Person, error) {
	address = email.Normalize(address)
	var found *models.Person
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		existing, err := st.PersonsByEmail(ctx, address)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up person")
		}
		for _, p := range existing {
			if p.PasswordHash != "" {
				found = p
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	return found, nil
}
