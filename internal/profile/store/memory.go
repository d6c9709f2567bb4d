package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"vitae/internal/profile/models"
	id "vitae/pkg/domain"
	dErrors "vitae/pkg/domain-errors"
	"vitae/pkg/email"
	"vitae/pkg/platform/sentinel"
)

// defaultTxTimeout bounds a transaction whose context carries no deadline.
const defaultTxTimeout = 10 * time.Second

// InMemory is a Store for tests and single-process runs. Transactions hold a
// store-wide lock and restore a snapshot when fn fails, so a failed cycle
// leaves no trace. All access goes through RunInTx.
type InMemory struct {
	mu      sync.Mutex
	state   *memState
	timeout time.Duration
}

// MemoryOption configures an InMemory store.
type MemoryOption func(*InMemory)

// WithMemoryTxTimeout overrides the default transaction timeout.
func WithMemoryTxTimeout(d time.Duration) MemoryOption {
	return func(s *InMemory) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewInMemory(opts ...MemoryOption) *InMemory {
	s := &InMemory{
		state:   newMemState(),
		timeout: defaultTxTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	snapshot := s.state.clone()
	if err := fn(ctx, &memTx{st: s.state}); err != nil {
		s.state = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		s.state = snapshot
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return nil
}

type memState struct {
	persons        map[id.PersonID]*models.Person
	records        map[id.PersonID]*models.Profile
	documents      map[id.DocumentID]*models.Document
	visualizations []models.Visualization

	lastPerson        int64
	lastDocument      int64
	lastRecord        int64
	lastVisualization int64
}

func newMemState() *memState {
	return &memState{
		persons:   make(map[id.PersonID]*models.Person),
		records:   make(map[id.PersonID]*models.Profile),
		documents: make(map[id.DocumentID]*models.Document),
	}
}

func (st *memState) clone() *memState {
	c := *st
	c.persons = make(map[id.PersonID]*models.Person, len(st.persons))
	for k, v := range st.persons {
		c.persons[k] = v.Clone()
	}
	c.records = make(map[id.PersonID]*models.Profile, len(st.records))
	for k, v := range st.records {
		c.records[k] = v.Clone()
	}
	c.documents = make(map[id.DocumentID]*models.Document, len(st.documents))
	for k, v := range st.documents {
		c.documents[k] = v.Clone()
	}
	c.visualizations = slices.Clone(st.visualizations)
	return &c
}

// memTx is the Store handed to RunInTx callbacks. The caller holds the lock.
type memTx struct {
	st *memState
}

func (t *memTx) PersonsByEmail(_ context.Context, address string) ([]*models.Person, error) {
	want := email.Normalize(address)
	var out []*models.Person
	for _, p := range t.st.persons {
		if email.Normalize(p.Email) == want {
			out = append(out, p.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.Person) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (t *memTx) Person(_ context.Context, personID id.PersonID) (*models.Person, error) {
	p, ok := t.st.persons[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (t *memTx) CreatePerson(_ context.Context, p *models.Person) error {
	t.st.lastPerson++
	p.ID = id.PersonID(t.st.lastPerson)
	t.st.persons[p.ID] = p.Clone()
	t.st.records[p.ID] = &models.Profile{}
	return nil
}

func (t *memTx) UpdatePerson(_ context.Context, p *models.Person) error {
	if _, ok := t.st.persons[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	t.st.persons[p.ID] = p.Clone()
	return nil
}

func (t *memTx) DeletePerson(_ context.Context, personID id.PersonID) error {
	if _, ok := t.st.persons[personID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(t.st.persons, personID)
	delete(t.st.records, personID)
	return nil
}

func (t *memTx) DuplicateEmails(_ context.Context) ([]string, error) {
	counts := make(map[string]int)
	for _, p := range t.st.persons {
		counts[email.Normalize(p.Email)]++
	}
	var out []string
	for e, n := range counts {
		if n > 1 && e != "" {
			out = append(out, e)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (t *memTx) Profile(_ context.Context, personID id.PersonID) (*models.Profile, error) {
	p, ok := t.st.persons[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	prof := t.st.records[personID].Clone()
	prof.Person = p.Clone()
	sortByID(prof.Educations)
	sortByID(prof.Experiences)
	sortByID(prof.Languages)
	sortByID(prof.FurtherEducations)
	sortByID(prof.Certifications)
	sortByID(prof.Awards)
	sortByID(prof.Publications)
	sortByID(prof.PersonalAchievements)
	sortByID(prof.PrivateMilestones)
	return prof, nil
}

func (t *memTx) ApplyChanges(_ context.Context, personID id.PersonID, cs *Changeset) error {
	rec, ok := t.st.records[personID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := func() int64 {
		t.st.lastRecord++
		return t.st.lastRecord
	}
	return firstErr(
		applyDiff(&rec.Educations, cs.Educations, personID, next),
		applyDiff(&rec.Experiences, cs.Experiences, personID, next),
		applyDiff(&rec.Languages, cs.Languages, personID, next),
		applyDiff(&rec.FurtherEducations, cs.FurtherEducations, personID, next),
		applyDiff(&rec.Certifications, cs.Certifications, personID, next),
		applyDiff(&rec.Awards, cs.Awards, personID, next),
		applyDiff(&rec.Publications, cs.Publications, personID, next),
		applyDiff(&rec.PersonalAchievements, cs.PersonalAchievements, personID, next),
		applyDiff(&rec.PrivateMilestones, cs.PrivateMilestones, personID, next),
	)
}

func (t *memTx) ReassignRecords(_ context.Context, from, to id.PersonID) error {
	src, ok := t.st.records[from]
	if !ok {
		return sentinel.ErrNotFound
	}
	dst, ok := t.st.records[to]
	if !ok {
		return sentinel.ErrNotFound
	}
	moveAll(&dst.Educations, &src.Educations, to)
	moveAll(&dst.Experiences, &src.Experiences, to)
	moveAll(&dst.Languages, &src.Languages, to)
	moveAll(&dst.FurtherEducations, &src.FurtherEducations, to)
	moveAll(&dst.Certifications, &src.Certifications, to)
	moveAll(&dst.Awards, &src.Awards, to)
	moveAll(&dst.Publications, &src.Publications, to)
	moveAll(&dst.PersonalAchievements, &src.PersonalAchievements, to)
	moveAll(&dst.PrivateMilestones, &src.PrivateMilestones, to)
	return nil
}

func (t *memTx) DeleteRecords(_ context.Context, category models.Category, ids []int64) error {
	drop := make(map[int64]bool, len(ids))
	for _, i := range ids {
		drop[i] = true
	}
	for _, rec := range t.st.records {
		switch category {
		case models.CategoryEducation:
			deleteIDs(&rec.Educations, drop)
		case models.CategoryExperience:
			deleteIDs(&rec.Experiences, drop)
		case models.CategoryLanguage:
			deleteIDs(&rec.Languages, drop)
		case models.CategoryFurtherEducation:
			deleteIDs(&rec.FurtherEducations, drop)
		case models.CategoryCertification:
			deleteIDs(&rec.Certifications, drop)
		case models.CategoryAward:
			deleteIDs(&rec.Awards, drop)
		case models.CategoryPublication:
			deleteIDs(&rec.Publications, drop)
		case models.CategoryPersonalAchievement:
			deleteIDs(&rec.PersonalAchievements, drop)
		case models.CategoryPrivateMilestone:
			deleteIDs(&rec.PrivateMilestones, drop)
		default:
			return fmt.Errorf("delete records: unknown category %q", category)
		}
	}
	return nil
}

func (t *memTx) Document(_ context.Context, docID id.DocumentID) (*models.Document, error) {
	d, ok := t.st.documents[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return d.Clone(), nil
}

func (t *memTx) CreateDocument(_ context.Context, d *models.Document) error {
	t.st.lastDocument++
	d.ID = id.DocumentID(t.st.lastDocument)
	t.st.documents[d.ID] = d.Clone()
	return nil
}

func (t *memTx) UpdateDocument(_ context.Context, d *models.Document) error {
	if _, ok := t.st.documents[d.ID]; !ok {
		return sentinel.ErrNotFound
	}
	t.st.documents[d.ID] = d.Clone()
	return nil
}

func (t *memTx) AddVisualization(_ context.Context, v *models.Visualization) error {
	if _, ok := t.st.documents[v.DocumentID]; !ok {
		return sentinel.ErrNotFound
	}
	t.st.lastVisualization++
	v.ID = t.st.lastVisualization
	t.st.visualizations = append(t.st.visualizations, *v)
	return nil
}

func (t *memTx) Visualizations(_ context.Context, docID id.DocumentID) ([]models.Visualization, error) {
	var out []models.Visualization
	for _, v := range t.st.visualizations {
		if v.DocumentID == docID {
			out = append(out, v)
		}
	}
	return out, nil
}

func applyDiff[T any, P record[T]](rows *[]T, d Diff[T], owner id.PersonID, next func() int64) error {
	for _, u := range d.Updated {
		rowID := P(&u).RecordID()
		i := slices.IndexFunc(*rows, func(r T) bool { return P(&r).RecordID() == rowID })
		if i < 0 {
			return fmt.Errorf("update record %d: %w", rowID, sentinel.ErrNotFound)
		}
		P(&u).Assign(rowID, owner)
		(*rows)[i] = u
	}
	for i := range d.Inserted {
		P(&d.Inserted[i]).Assign(next(), owner)
		*rows = append(*rows, d.Inserted[i])
	}
	return nil
}

func moveAll[T any, P record[T]](dst, src *[]T, to id.PersonID) {
	for _, r := range *src {
		P(&r).Assign(P(&r).RecordID(), to)
		*dst = append(*dst, r)
	}
	*src = nil
}

func deleteIDs[T any, P record[T]](rows *[]T, drop map[int64]bool) {
	*rows = slices.DeleteFunc(*rows, func(r T) bool { return drop[P(&r).RecordID()] })
}

func sortByID[T any, P record[T]](rows []T) {
	slices.SortFunc(rows, func(a, b T) int { return cmp.Compare(P(&a).RecordID(), P(&b).RecordID()) })
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
