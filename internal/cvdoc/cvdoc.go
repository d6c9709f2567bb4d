// Package cvdoc assembles the ordered, formatted sections of a standardized
// CV from a merged profile. The output is plain text safe for Latin-1 fonts.
package cvdoc

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"vitae/internal/profile/dates"
	"vitae/internal/profile/models"
	"vitae/internal/profile/vocab"
	pstrings "vitae/pkg/platform/strings"
)

const noBio = "No biography provided."

// Section is a titled list of paragraphs.
type Section struct {
	Title      string
	Paragraphs []string
}

// Document is the renderable CV.
type Document struct {
	Title    string
	Contact  string
	Sections []Section
}

// FormatDate renders v at its precision: dd/mm/yyyy, mm/yyyy or yyyy.
func FormatDate(v dates.Value) string {
	if v.IsZero() {
		return ""
	}
	switch v.Precision {
	case dates.PrecisionDay:
		return v.Date.Format("02/01/2006")
	case dates.PrecisionMonth:
		return v.Date.Format("01/2006")
	case dates.PrecisionYear:
		return v.Date.Format("2006")
	}
	return ""
}

// FormatRange renders a start/end pair. With point set, an end that is
// absent or equal to the start collapses the range to the start date.
func FormatRange(start, end dates.Value, point bool) string {
	if point && !start.IsZero() && (end.IsZero() || start.SameDate(end)) {
		return FormatDate(start)
	}
	switch {
	case !start.IsZero() && !end.IsZero():
		if start.Equal(end) {
			return FormatDate(start)
		}
		return FormatDate(start) + " – " + FormatDate(end)
	case !start.IsZero():
		return FormatDate(start) + " – present"
	case !end.IsZero():
		return "until " + FormatDate(end)
	}
	return ""
}

// furtherRange always collapses an absent or identical end.
func furtherRange(start, end dates.Value) string {
	if end.IsZero() || start.SameDate(end) {
		return FormatDate(start)
	}
	return FormatRange(start, end, false)
}

func withRange(line, r string) string {
	if r == "" {
		return line
	}
	return line + " (" + r + ")"
}

// Build produces the CV of p. Sections without printable entries are
// omitted, except the short bio which always appears.
func Build(p *models.Profile) Document {
	person := p.Person
	if person == nil {
		person = &models.Person{}
	}

	doc := Document{
		Title:   pstrings.Latin1("Standardized Curriculum Vitae for " + person.FullName),
		Contact: pstrings.Latin1(contact(person)),
	}

	bio := person.ShortBio
	if strings.TrimSpace(bio) == "" {
		bio = noBio
	}
	doc.add("Short Bio", []string{bio})
	doc.add("Professional Experience", experiences(p.Experiences))
	doc.add("Education", educations(p.Educations))
	doc.add("Further Education", furtherEducations(p.FurtherEducations))
	doc.add("Certifications", certifications(p.Certifications))
	doc.add("Awards", awards(p.Awards))
	doc.add("Languages", languages(p.Languages))
	doc.add("Publications", publications(p.Publications))
	doc.add("Personal Achievements", achievements(p.PersonalAchievements))
	doc.add("Private Milestones", milestones(p.PrivateMilestones))
	return doc
}

func (d *Document) add(title string, paragraphs []string) {
	if len(paragraphs) == 0 {
		return
	}
	clean := make([]string, len(paragraphs))
	for i, para := range paragraphs {
		clean[i] = pstrings.Latin1(para)
	}
	d.Sections = append(d.Sections, Section{Title: title, Paragraphs: clean})
}

func contact(p *models.Person) string {
	var parts []string
	add := func(label, v string) {
		if v != "" {
			parts = append(parts, label+": "+v)
		}
	}
	add("Email", p.Email)
	add("Phone", p.Phone)
	add("LinkedIn", p.LinkedIn)
	add("GitHub", p.GitHub)
	add("Website", p.Website)
	return strings.Join(parts, " | ")
}

// newestFirst orders by date descending with absent dates last.
func newestFirst(a, b dates.Value) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	}
	return b.Date.Compare(a.Date)
}

func latest(end, start dates.Value) dates.Value {
	if !end.IsZero() {
		return end
	}
	return start
}

func sorted[T any](rows []T, by func(a, b T) int) []T {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, by)
	return out
}

func experiences(rows []models.Experience) []string {
	var out []string
	for _, r := range sorted(rows, func(a, b models.Experience) int { return newestFirst(a.Start, b.Start) }) {
		if r.Title == "" || r.Company == "" {
			continue
		}
		line := r.Title + " at " + r.Company
		if r.Location != "" {
			line += ", " + r.Location
		}
		line = withRange(line, FormatRange(r.Start, r.End, false))
		if r.RoleType != "" {
			line += "\nRole: " + r.RoleType
		}
		if r.RoleDescription != "" {
			line += "\n" + r.RoleDescription
		}
		out = append(out, line)
	}
	return out
}

func educations(rows []models.Education) []string {
	var out []string
	for _, r := range sorted(rows, func(a, b models.Education) int {
		return newestFirst(latest(a.End, a.Start), latest(b.End, b.Start))
	}) {
		var parts []string
		if r.Degree != "" {
			parts = append(parts, r.Degree)
		}
		if r.FieldOfStudy != "" {
			parts = append(parts, "in "+r.FieldOfStudy)
		}
		if r.Institution != "" {
			parts = append(parts, r.Institution)
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, withRange(strings.Join(parts, " "), FormatRange(r.Start, r.End, false)))
	}
	return out
}

func furtherEducations(rows []models.FurtherEducation) []string {
	var out []string
	for _, r := range sorted(rows, func(a, b models.FurtherEducation) int {
		return newestFirst(latest(a.End, a.Start), latest(b.End, b.Start))
	}) {
		if r.Title == "" {
			continue
		}
		line := r.Title
		if r.Institution != "" {
			line += " – " + r.Institution
		}
		out = append(out, withRange(line, furtherRange(r.Start, r.End)))
	}
	return out
}

func certifications(rows []models.Certification) []string {
	var out []string
	for _, r := range sorted(rows, func(a, b models.Certification) int { return newestFirst(a.Start, b.Start) }) {
		if r.Name == "" {
			continue
		}
		line := r.Name
		if r.Issuer != "" {
			line += " – " + r.Issuer
		}
		out = append(out, withRange(line, FormatRange(r.Start, r.End, true)))
	}
	return out
}

func awards(rows []models.Award) []string {
	var out []string
	for _, r := range sorted(rows, func(a, b models.Award) int { return newestFirst(a.Start, b.Start) }) {
		if r.Name == "" {
			continue
		}
		line := r.Name
		if r.AwardedBy != "" {
			line += " – " + r.AwardedBy
		}
		out = append(out, withRange(line, FormatRange(r.Start, r.End, true)))
	}
	return out
}

func languages(rows []models.Language) []string {
	rank := func(l models.Language) (int, int) {
		return vocab.ProficiencyRank(l.ProficiencyWritten), vocab.ProficiencyRank(l.ProficiencySpoken)
	}
	var out []string
	for _, r := range sorted(rows, func(a, b models.Language) int {
		aw, as := rank(a)
		bw, bs := rank(b)
		return cmp.Or(cmp.Compare(aw, bw), cmp.Compare(as, bs))
	}) {
		if r.Language == "" {
			continue
		}
		out = append(out, fmt.Sprintf("%s — Written: %s, Spoken: %s",
			r.Language, orNA(r.ProficiencyWritten), orNA(r.ProficiencySpoken)))
	}
	return out
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// publicationKey orders by year, then by month when the precision carries
// one. Undated publications sort last.
func publicationKey(v dates.Value) (int, time.Month) {
	if v.IsZero() {
		return 0, 0
	}
	if v.Precision == dates.PrecisionYear {
		return v.Date.Year(), 0
	}
	return v.Date.Year(), v.Date.Month()
}

func publications(rows []models.Publication) []string {
	var out []string
	for _, r := range sorted(rows, func(a, b models.Publication) int {
		ay, am := publicationKey(a.Published)
		by, bm := publicationKey(b.Published)
		return cmp.Or(cmp.Compare(by, ay), cmp.Compare(bm, am))
	}) {
		var parts []string
		for _, v := range []string{r.Title, r.Journal, r.Authors} {
			if v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) == 0 && r.Published.IsZero() {
			continue
		}
		out = append(out, withRange(strings.Join(parts, ", "), FormatDate(r.Published)))
	}
	return out
}

func achievements(rows []models.PersonalAchievement) []string {
	var out []string
	for _, r := range sorted(rows, func(a, b models.PersonalAchievement) int { return newestFirst(a.Start, b.Start) }) {
		if r.Achievement == "" {
			continue
		}
		line := r.Achievement
		if dr := FormatRange(r.Start, r.End, false); dr != "" {
			line = dr + " – " + line
		}
		if r.Description != "" {
			line += ": " + r.Description
		}
		out = append(out, line)
	}
	return out
}

func milestones(rows []models.PrivateMilestone) []string {
	var out []string
	for _, r := range sorted(rows, func(a, b models.PrivateMilestone) int { return newestFirst(a.Start, b.Start) }) {
		if r.Event == "" {
			continue
		}
		line := withRange(r.Event, FormatRange(r.Start, r.End, false))
		if r.Description != "" {
			line += ": " + r.Description
		}
		out = append(out, line)
	}
	return out
}
