package models

import (
	"time"

	id "vitae/pkg/domain"
	"vitae/pkg/email"
)

// Person is the aggregate root of the record store.
//
// Invariants:
//   - Email is trimmed and lower-cased and is the only identity key
//   - among Persons sharing an Email, the lowest ID is canonical
//   - sub-records are owned by exactly one Person and deleted with it
type Person struct {
	ID           id.PersonID    `json:"id"`
	Email        string         `json:"email"`
	FullName     string         `json:"full_name"`
	Phone        string         `json:"phone,omitempty"`
	LinkedIn     string         `json:"linkedin,omitempty"`
	GitHub       string         `json:"github,omitempty"`
	Website      string         `json:"website,omitempty"`
	ShortBio     string         `json:"short_bio,omitempty"`
	PasswordHash string         `json:"-"`
	DocumentID   *id.DocumentID `json:"document_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewPerson builds an unsaved Person. An empty name is derived from the
// email local part.
func NewPerson(address string, core Core, now time.Time) *Person {
	p := &Person{
		Email:     email.Normalize(address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	core.applyTo(p)
	if p.FullName == "" {
		p.FullName = email.DisplayNameFromEmail(p.Email)
	}
	return p
}

// Core holds the descriptive Person fields taken from an extraction.
type Core struct {
	FullName string
	Phone    string
	LinkedIn string
	GitHub   string
	Website  string
	ShortBio string
}

func (c Core) applyTo(p *Person) {
	p.FullName = c.FullName
	p.Phone = c.Phone
	p.LinkedIn = c.LinkedIn
	p.GitHub = c.GitHub
	p.Website = c.Website
	p.ShortBio = c.ShortBio
}

// LinkDocument records doc as the Person's latest source document. It reports
// whether anything changed.
func (p *Person) LinkDocument(doc id.DocumentID, now time.Time) bool {
	if doc.IsNil() || (p.DocumentID != nil && *p.DocumentID == doc) {
		return false
	}
	p.DocumentID = &doc
	p.UpdatedAt = now
	return true
}

// FillFrom copies every descriptive field that is empty on p from other.
// It reports whether anything changed.
func (p *Person) FillFrom(other *Person) bool {
	changed := false
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}
	fill(&p.FullName, other.FullName)
	fill(&p.Phone, other.Phone)
	fill(&p.LinkedIn, other.LinkedIn)
	fill(&p.GitHub, other.GitHub)
	fill(&p.Website, other.Website)
	fill(&p.ShortBio, other.ShortBio)
	fill(&p.PasswordHash, other.PasswordHash)
	if p.DocumentID == nil && other.DocumentID != nil {
		d := *other.DocumentID
		p.DocumentID = &d
		changed = true
	}
	return changed
}

// Clone returns a deep copy.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	c := *p
	if p.DocumentID != nil {
		d := *p.DocumentID
		c.DocumentID = &d
	}
	return &c
}
