package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "vitae/pkg/domain-errors"
)

// PersonID identifies a Person row. The lowest ID among Persons sharing an
// email is the canonical one.
type PersonID int64

// DocumentID identifies an uploaded source document.
type DocumentID int64

// CycleID identifies one reconciliation cycle in logs and traces.
type CycleID uuid.UUID

func (id PersonID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id DocumentID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id CycleID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID was never assigned.
func (id PersonID) IsNil() bool { return id <= 0 }
func (id DocumentID) IsNil() bool { return id <= 0 }
func (id CycleID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewCycleID returns a random cycle identifier.
func NewCycleID() CycleID {
	return CycleID(uuid.New())
}

// ParsePersonID parses a positive decimal person ID.
func ParsePersonID(s string) (PersonID, error) {
	n, err := parsePositive(s)
	return PersonID(n), err
}

// ParseDocumentID parses a positive decimal document ID.
func ParseDocumentID(s string) (DocumentID, error) {
	n, err := parsePositive(s)
	return DocumentID(n), err
}

// ParseCycleID parses a non-nil UUID.
func ParseCycleID(s string) (CycleID, error) {
	if s == "" {
		return CycleID{}, dErrors.New(dErrors.CodeBadRequest, "cycle id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return CycleID{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid cycle id")
	}
	if u == uuid.Nil {
		return CycleID{}, dErrors.New(dErrors.CodeBadRequest, "cycle id cannot be nil")
	}
	return CycleID(u), nil
}

func parsePositive(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid id")
	}
	if n <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "id must be positive")
	}
	return n, nil
}
