// Package collapse folds Persons that share a normalized email into the
// lowest-ID Person.
package collapse

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vitae/internal/profile/metrics"
	"vitae/internal/profile/models"
	"vitae/internal/profile/store"
	"vitae/internal/profile/upsert"
	id "vitae/pkg/domain"
	dErrors "vitae/pkg/domain-errors"
)

// Group describes one merged email group.
type Group struct {
	Email     string
	Canonical id.PersonID
	Removed   []id.PersonID
	Folded    map[models.Category]int
}

// Failure is an email group whose transaction rolled back.
type Failure struct {
	Email string
	Err   error
}

// Report summarizes a collapse run.
type Report struct {
	Merged []Group
	Failed []Failure
}

// Removed returns every Person ID deleted during the run.
func (r Report) Removed() []id.PersonID {
	var out []id.PersonID
	for _, g := range r.Merged {
		out = append(out, g.Removed...)
	}
	return out
}

// Collapser merges duplicate Persons.
type Collapser struct {
	tx      store.TxRunner
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	clock   func() time.Time
}

// Option configures a Collapser.
type Option func(*Collapser)

// WithLogger sets the logger for run and group events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collapser) {
		c.logger = logger
	}
}

// WithMetrics records merged persons, folded records and failed groups.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Collapser) {
		c.metrics = m
	}
}

// WithClock overrides the time source stamped on updated Persons.
func WithClock(clock func() time.Time) Option {
	return func(c *Collapser) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New returns a Collapser that opens one transaction per email group on tx.
func New(tx store.TxRunner, opts ...Option) *Collapser {
	c := &Collapser{
		tx:     tx,
		logger: slog.Default(),
		tracer: otel.Tracer("vitae/internal/profile/collapse"),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run collapses every duplicated email. Each group commits or rolls back on
// its own; a failed group is reported and the run moves on. Run returns an
// error only when the duplicated emails cannot be listed.
func (c *Collapser) Run(ctx context.Context) (Report, error) {
	ctx, span := c.tracer.Start(ctx, "collapse.run")
	defer span.End()

	var emails []string
	err := c.tx.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		var err error
		emails, err = st.DuplicateEmails(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list duplicate emails")
	}

	var report Report
	for _, address := range emails {
		if err := ctx.Err(); err != nil {
			report.Failed = append(report.Failed, Failure{Email: address, Err: err})
			continue
		}
		group, err := c.collapseGroup(ctx, address)
		if err != nil {
			c.metrics.IncrementCollapseGroupFailed()
			c.logger.ErrorContext(ctx, "collapse group failed", "email", address, "error", err)
			report.Failed = append(report.Failed, Failure{Email: address, Err: err})
			continue
		}
		if len(group.Removed) == 0 {
			continue
		}
		c.metrics.AddPersonsCollapsed(len(group.Removed))
		for cat, n := range group.Folded {
			c.metrics.AddRecordsFolded(string(cat), n)
		}
		c.logger.InfoContext(ctx, "persons collapsed",
			"email", address,
			"person_id", group.Canonical,
			"removed", len(group.Removed),
		)
		report.Merged = append(report.Merged, group)
	}
	span.SetAttributes(
		attribute.Int("groups_merged", len(report.Merged)),
		attribute.Int("groups_failed", len(report.Failed)),
	)
	return report, nil
}

func (c *Collapser) collapseGroup(ctx context.Context, address string) (Group, error) {
	ctx, span := c.tracer.Start(ctx, "collapse.group")
	defer span.End()

	group := Group{Email: address, Folded: make(map[models.Category]int)}
	err := c.tx.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		persons, err := st.PersonsByEmail(ctx, address)
		if err != nil {
			return err
		}
		if len(persons) < 2 {
			return nil
		}
		canonical := persons[0]
		group.Canonical = canonical.ID

		filled := false
		for _, dup := range persons[1:] {
			if canonical.FillFrom(dup) {
				filled = true
			}
			if err := st.ReassignRecords(ctx, dup.ID, canonical.ID); err != nil {
				return err
			}
			if err := st.DeletePerson(ctx, dup.ID); err != nil {
				return err
			}
			group.Removed = append(group.Removed, dup.ID)
		}
		if filled {
			canonical.UpdatedAt = c.clock().UTC()
			if err := st.UpdatePerson(ctx, canonical); err != nil {
				return err
			}
		}
		return c.fold(ctx, st, canonical.ID, group.Folded)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Group{}, err
	}
	return group, nil
}

// fold deletes sub-records of personID that share a natural key with a
// lower-ID sub-record of the same category.
func (c *Collapser) fold(ctx context.Context, st store.Store, personID id.PersonID, folded map[models.Category]int) error {
	prof, err := st.Profile(ctx, personID)
	if err != nil {
		return err
	}
	k := upsert.Keys
	drops := map[models.Category][]int64{
		models.CategoryEducation:           duplicates(prof.Educations, k.Education),
		models.CategoryExperience:          duplicates(prof.Experiences, k.Experience),
		models.CategoryLanguage:            duplicates(prof.Languages, k.Language),
		models.CategoryFurtherEducation:    duplicates(prof.FurtherEducations, k.FurtherEducation),
		models.CategoryCertification:       duplicates(prof.Certifications, k.Certification),
		models.CategoryAward:               duplicates(prof.Awards, k.Award),
		models.CategoryPublication:         duplicates(prof.Publications, k.Publication),
		models.CategoryPersonalAchievement: duplicates(prof.PersonalAchievements, k.PersonalAchievement),
		models.CategoryPrivateMilestone:    duplicates(prof.PrivateMilestones, k.PrivateMilestone),
	}
	for _, cat := range models.Categories {
		ids := drops[cat]
		if len(ids) == 0 {
			continue
		}
		if err := st.DeleteRecords(ctx, cat, ids); err != nil {
			return err
		}
		folded[cat] = len(ids)
	}
	return nil
}

type keyed[T any] interface {
	*T
	RecordID() int64
}

// duplicates returns the IDs of rows whose key was already taken by a row
// with a lower ID. Rows without a complete key are kept.
func duplicates[T any, P keyed[T]](rows []T, key func(*T) (string, bool)) []int64 {
	ordered := slices.Clone(rows)
	slices.SortFunc(ordered, func(a, b T) int {
		return cmp.Compare(P(&a).RecordID(), P(&b).RecordID())
	})
	seen := make(map[string]bool, len(ordered))
	var drop []int64
	for i := range ordered {
		k, ok := key(&ordered[i])
		if !ok {
			continue
		}
		if seen[k] {
			drop = append(drop, P(&ordered[i]).RecordID())
			continue
		}
		seen[k] = true
	}
	return drop
}
