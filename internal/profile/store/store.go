// Package store persists Persons, their sub-records, source documents and
// generated artifacts. Stores are pure I/O: they report facts through
// pkg/platform/sentinel errors and leave policy to the services.
package store

import (
	"context"

	"vitae/internal/profile/models"
	id "vitae/pkg/domain"
)

// PersonStore reads and writes Person rows.
type PersonStore interface {
	// PersonsByEmail returns every Person holding the normalized email, in
	// ascending ID order.
	PersonsByEmail(ctx context.Context, email string) ([]*models.Person, error)
	Person(ctx context.Context, personID id.PersonID) (*models.Person, error)
	CreatePerson(ctx context.Context, p *models.Person) error
	UpdatePerson(ctx context.Context, p *models.Person) error
	DeletePerson(ctx context.Context, personID id.PersonID) error
	// DuplicateEmails lists normalized emails held by more than one Person.
	DuplicateEmails(ctx context.Context) ([]string, error)
}

// RecordStore reads and writes the nine sub-record collections.
type RecordStore interface {
	// Profile loads a Person with all sub-records ordered by ID.
	Profile(ctx context.Context, personID id.PersonID) (*models.Profile, error)
	// ApplyChanges inserts and updates sub-records of one Person. Inserted
	// entries receive their row IDs in place.
	ApplyChanges(ctx context.Context, personID id.PersonID, cs *Changeset) error
	// ReassignRecords moves every sub-record owned by from to to.
	ReassignRecords(ctx context.Context, from, to id.PersonID) error
	DeleteRecords(ctx context.Context, category models.Category, ids []int64) error
}

// DocumentStore tracks source documents and their artifacts.
type DocumentStore interface {
	Document(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	CreateDocument(ctx context.Context, d *models.Document) error
	UpdateDocument(ctx context.Context, d *models.Document) error
	AddVisualization(ctx context.Context, v *models.Visualization) error
	Visualizations(ctx context.Context, docID id.DocumentID) ([]models.Visualization, error)
}

// Store is the full record store.
type Store interface {
	PersonStore
	RecordStore
	DocumentStore
}

// TxRunner runs fn inside one transaction. fn must use the Store and context
// it is handed; returning an error rolls back every write fn made.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// Diff is the write set of one category.
type Diff[T any] struct {
	Inserted []T
	Updated  []T
}

func (d Diff[T]) Empty() bool {
	return len(d.Inserted) == 0 && len(d.Updated) == 0
}

// Changeset groups the write sets of every category for one Person.
type Changeset struct {
	Educations           Diff[models.Education]
	Experiences          Diff[models.Experience]
	Languages            Diff[models.Language]
	FurtherEducations    Diff[models.FurtherEducation]
	Certifications       Diff[models.Certification]
	Awards               Diff[models.Award]
	Publications         Diff[models.Publication]
	PersonalAchievements Diff[models.PersonalAchievement]
	PrivateMilestones    Diff[models.PrivateMilestone]
}

// Empty reports whether the changeset writes nothing.
func (c *Changeset) Empty() bool {
	return c.Educations.Empty() && c.Experiences.Empty() && c.Languages.Empty() &&
		c.FurtherEducations.Empty() && c.Certifications.Empty() && c.Awards.Empty() &&
		c.Publications.Empty() && c.PersonalAchievements.Empty() && c.PrivateMilestones.Empty()
}

// record is satisfied by a pointer to any sub-record type.
type record[T any] interface {
	*T
	RecordID() int64
	Assign(rowID int64, owner id.PersonID)
}
