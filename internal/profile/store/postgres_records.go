package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"vitae/internal/profile/dates"
	"vitae/internal/profile/models"
	id "vitae/pkg/domain"
	"vitae/pkg/platform/tx"
)

// table maps one sub-record type onto its SQL table. columns excludes id and
// person_id; args and dest list values and scan targets in column order.
type table[T any] struct {
	name    string
	columns []string
	args    func(*T) []any
	dest    func(*T) []any
}

var educations = table[models.Education]{
	name:    "educations",
	columns: []string{"degree", "field_of_study", "institution", "start_date", "start_precision", "end_date", "end_precision"},
	args: func(r *models.Education) []any {
		return append([]any{r.Degree, r.FieldOfStudy, r.Institution}, span(r.Start, r.End)...)
	},
	dest: func(r *models.Education) []any {
		return append([]any{&r.Degree, &r.FieldOfStudy, &r.Institution}, spanDest(&r.Start, &r.End)...)
	},
}

var experiences = table[models.Experience]{
	name:    "experiences",
	columns: []string{"title", "company", "location", "role_type", "role_description", "start_date", "start_precision", "end_date", "end_precision"},
	args: func(r *models.Experience) []any {
		return append([]any{r.Title, r.Company, r.Location, r.RoleType, r.RoleDescription}, span(r.Start, r.End)...)
	},
	dest: func(r *models.Experience) []any {
		return append([]any{&r.Title, &r.Company, &r.Location, &r.RoleType, &r.RoleDescription}, spanDest(&r.Start, &r.End)...)
	},
}

var languages = table[models.Language]{
	name:    "languages",
	columns: []string{"language", "proficiency_written", "proficiency_spoken"},
	args: func(r *models.Language) []any {
		return []any{r.Language, r.ProficiencyWritten, r.ProficiencySpoken}
	},
	dest: func(r *models.Language) []any {
		return []any{&r.Language, &r.ProficiencyWritten, &r.ProficiencySpoken}
	},
}

var furtherEducations = table[models.FurtherEducation]{
	name:    "further_educations",
	columns: []string{"title", "institution", "start_date", "start_precision", "end_date", "end_precision"},
	args: func(r *models.FurtherEducation) []any {
		return append([]any{r.Title, r.Institution}, span(r.Start, r.End)...)
	},
	dest: func(r *models.FurtherEducation) []any {
		return append([]any{&r.Title, &r.Institution}, spanDest(&r.Start, &r.End)...)
	},
}

var certifications = table[models.Certification]{
	name:    "certifications",
	columns: []string{"name", "issuer", "start_date", "start_precision", "end_date", "end_precision"},
	args: func(r *models.Certification) []any {
		return append([]any{r.Name, r.Issuer}, span(r.Start, r.End)...)
	},
	dest: func(r *models.Certification) []any {
		return append([]any{&r.Name, &r.Issuer}, spanDest(&r.Start, &r.End)...)
	},
}

var awards = table[models.Award]{
	name:    "awards",
	columns: []string{"name", "awarded_by", "start_date", "start_precision", "end_date", "end_precision"},
	args: func(r *models.Award) []any {
		return append([]any{r.Name, r.AwardedBy}, span(r.Start, r.End)...)
	},
	dest: func(r *models.Award) []any {
		return append([]any{&r.Name, &r.AwardedBy}, spanDest(&r.Start, &r.End)...)
	},
}

var publications = table[models.Publication]{
	name:    "publications",
	columns: []string{"title", "journal", "authors", "published_date", "published_precision"},
	args: func(r *models.Publication) []any {
		return []any{r.Title, r.Journal, r.Authors, dateArg(r.Published), precisionArg(r.Published)}
	},
	dest: func(r *models.Publication) []any {
		return []any{&r.Title, &r.Journal, &r.Authors, dateCol{&r.Published}, precisionCol{&r.Published}}
	},
}

var personalAchievements = table[models.PersonalAchievement]{
	name:    "personal_achievements",
	columns: []string{"achievement", "description", "start_date", "start_precision", "end_date", "end_precision"},
	args: func(r *models.PersonalAchievement) []any {
		return append([]any{r.Achievement, r.Description}, span(r.Start, r.End)...)
	},
	dest: func(r *models.PersonalAchievement) []any {
		return append([]any{&r.Achievement, &r.Description}, spanDest(&r.Start, &r.End)...)
	},
}

var privateMilestones = table[models.PrivateMilestone]{
	name:    "private_milestones",
	columns: []string{"event", "description", "start_date", "start_precision", "end_date", "end_precision"},
	args: func(r *models.PrivateMilestone) []any {
		return append([]any{r.Event, r.Description}, span(r.Start, r.End)...)
	},
	dest: func(r *models.PrivateMilestone) []any {
		return append([]any{&r.Event, &r.Description}, spanDest(&r.Start, &r.End)...)
	},
}

var tableNames = map[models.Category]string{
	models.CategoryEducation:           educations.name,
	models.CategoryExperience:          experiences.name,
	models.CategoryLanguage:            languages.name,
	models.CategoryFurtherEducation:    furtherEducations.name,
	models.CategoryCertification:       certifications.name,
	models.CategoryAward:               awards.name,
	models.CategoryPublication:         publications.name,
	models.CategoryPersonalAchievement: personalAchievements.name,
	models.CategoryPrivateMilestone:    privateMilestones.name,
}

func (s *Postgres) Profile(ctx context.Context, personID id.PersonID) (*models.Profile, error) {
	person, err := s.Person(ctx, personID)
	if err != nil {
		return nil, err
	}
	q := s.q(ctx)
	p := &models.Profile{Person: person}
	if p.Educations, err = loadRows(ctx, q, educations, personID); err != nil {
		return nil, err
	}
	if p.Experiences, err = loadRows(ctx, q, experiences, personID); err != nil {
		return nil, err
	}
	if p.Languages, err = loadRows(ctx, q, languages, personID); err != nil {
		return nil, err
	}
	if p.FurtherEducations, err = loadRows(ctx, q, furtherEducations, personID); err != nil {
		return nil, err
	}
	if p.Certifications, err = loadRows(ctx, q, certifications, personID); err != nil {
		return nil, err
	}
	if p.Awards, err = loadRows(ctx, q, awards, personID); err != nil {
		return nil, err
	}
	if p.Publications, err = loadRows(ctx, q, publications, personID); err != nil {
		return nil, err
	}
	if p.PersonalAchievements, err = loadRows(ctx, q, personalAchievements, personID); err != nil {
		return nil, err
	}
	if p.PrivateMilestones, err = loadRows(ctx, q, privateMilestones, personID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Postgres) ApplyChanges(ctx context.Context, personID id.PersonID, cs *Changeset) error {
	q := s.q(ctx)
	steps := []func() error{
		func() error { return writeDiff(ctx, q, educations, personID, cs.Educations) },
		func() error { return writeDiff(ctx, q, experiences, personID, cs.Experiences) },
		func() error { return writeDiff(ctx, q, languages, personID, cs.Languages) },
		func() error { return writeDiff(ctx, q, furtherEducations, personID, cs.FurtherEducations) },
		func() error { return writeDiff(ctx, q, certifications, personID, cs.Certifications) },
		func() error { return writeDiff(ctx, q, awards, personID, cs.Awards) },
		func() error { return writeDiff(ctx, q, publications, personID, cs.Publications) },
		func() error { return writeDiff(ctx, q, personalAchievements, personID, cs.PersonalAchievements) },
		func() error { return writeDiff(ctx, q, privateMilestones, personID, cs.PrivateMilestones) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Postgres) ReassignRecords(ctx context.Context, from, to id.PersonID) error {
	q := s.q(ctx)
	for _, cat := range models.Categories {
		name := tableNames[cat]
		if _, err := q.ExecContext(ctx, `UPDATE `+name+` SET person_id = $2 WHERE person_id = $1`,
			int64(from), int64(to)); err != nil {
			return fmt.Errorf("reassign %s: %w", name, err)
		}
	}
	return nil
}

func (s *Postgres) DeleteRecords(ctx context.Context, category models.Category, ids []int64) error {
	name, ok := tableNames[category]
	if !ok {
		return fmt.Errorf("delete records: unknown category %q", category)
	}
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM `+name+` WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func loadRows[T any, P record[T]](ctx context.Context, q tx.Querier, t table[T], personID id.PersonID) ([]T, error) {
	query := `SELECT id, person_id, ` + strings.Join(t.columns, ", ") +
		` FROM ` + t.name + ` WHERE person_id = $1 ORDER BY id`
	rows, err := q.QueryContext(ctx, query, int64(personID))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var (
			r     T
			rowID int64
			owner int64
		)
		if err := rows.Scan(append([]any{&rowID, &owner}, t.dest(&r)...)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		P(&r).Assign(rowID, id.PersonID(owner))
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.name, err)
	}
	return out, nil
}

func writeDiff[T any, P record[T]](ctx context.Context, q tx.Querier, t table[T], personID id.PersonID, d Diff[T]) error {
	if len(d.Updated) > 0 {
		sets := make([]string, len(t.columns))
		for i, c := range t.columns {
			sets[i] = c + " = $" + strconv.Itoa(i+3)
		}
		query := `UPDATE ` + t.name + ` SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 AND person_id = $2`
		for i := range d.Updated {
			r := &d.Updated[i]
			rowID := P(r).RecordID()
			res, err := q.ExecContext(ctx, query, append([]any{rowID, int64(personID)}, t.args(r)...)...)
			if err != nil {
				return fmt.Errorf("update %s: %w", t.name, err)
			}
			if err := expectRow(res, "update "+t.name); err != nil {
				return fmt.Errorf("update %s %d: %w", t.name, rowID, err)
			}
		}
	}
	if len(d.Inserted) > 0 {
		placeholders := make([]string, len(t.columns))
		for i := range t.columns {
			placeholders[i] = "$" + strconv.Itoa(i+2)
		}
		query := `INSERT INTO ` + t.name + ` (person_id, ` + strings.Join(t.columns, ", ") +
			`) VALUES ($1, ` + strings.Join(placeholders, ", ") + `) RETURNING id`
		for i := range d.Inserted {
			r := &d.Inserted[i]
			var rowID int64
			if err := q.QueryRowContext(ctx, query, append([]any{int64(personID)}, t.args(r)...)...).Scan(&rowID); err != nil {
				return fmt.Errorf("insert %s: %w", t.name, err)
			}
			P(r).Assign(rowID, personID)
		}
	}
	return nil
}

func span(start, end dates.Value) []any {
	return []any{dateArg(start), precisionArg(start), dateArg(end), precisionArg(end)}
}

func spanDest(start, end *dates.Value) []any {
	return []any{dateCol{start}, precisionCol{start}, dateCol{end}, precisionCol{end}}
}

func dateArg(v dates.Value) any {
	if v.IsZero() {
		return nil
	}
	return v.Date
}

func precisionArg(v dates.Value) any {
	if v.IsZero() || v.Precision == dates.PrecisionNone {
		return nil
	}
	return string(v.Precision)
}

// dateCol and precisionCol scan the two columns of a dated value into the
// same dates.Value.
type dateCol struct{ v *dates.Value }

func (c dateCol) Scan(src any) error {
	switch t := src.(type) {
	case nil:
		c.v.Date = time.Time{}
	case time.Time:
		c.v.Date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
	return nil
}

type precisionCol struct{ v *dates.Value }

func (c precisionCol) Scan(src any) error {
	switch t := src.(type) {
	case nil:
		c.v.Precision = dates.PrecisionNone
	case string:
		c.v.Precision = dates.Precision(t)
	case []byte:
		c.v.Precision = dates.Precision(t)
	default:
		return fmt.Errorf("scan precision: unsupported type %T", src)
	}
	return nil
}
