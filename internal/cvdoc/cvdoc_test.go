package cvdoc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitae/internal/profile/dates"
	"vitae/internal/profile/models"
)

var (
	y2019  = dates.Of(2019, time.January, 1, dates.PrecisionYear)
	m2020  = dates.Of(2020, time.June, 1, dates.PrecisionMonth)
	d2021  = dates.Of(2021, time.March, 15, dates.PrecisionDay)
	absent = dates.Value{}
)

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2019", FormatDate(y2019))
	assert.Equal(t, "06/2020", FormatDate(m2020))
	assert.Equal(t, "15/03/2021", FormatDate(d2021))
	assert.Equal(t, "", FormatDate(absent))
}

func TestFormatRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end dates.Value
		point      bool
		want       string
	}{
		{name: "both", start: y2019, end: m2020, want: "2019 – 06/2020"},
		{name: "open", start: m2020, end: absent, want: "06/2020 – present"},
		{name: "end only", start: absent, end: d2021, want: "until 15/03/2021"},
		{name: "neither", want: ""},
		{name: "identical", start: m2020, end: m2020, want: "06/2020"},
		{name: "point without end", start: d2021, end: absent, point: true, want: "15/03/2021"},
		{name: "point with distinct end", start: y2019, end: d2021, point: true, want: "2019 – 15/03/2021"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRange(tt.start, tt.end, tt.point))
		})
	}
}

func TestFurtherRange(t *testing.T) {
	assert.Equal(t, "2019", furtherRange(y2019, absent))
	assert.Equal(t, "2019 – 06/2020", furtherRange(y2019, m2020))
}

func section(t *testing.T, doc Document, title string) Section {
	t.Helper()
	for _, s := range doc.Sections {
		if s.Title == title {
			return s
		}
	}
	require.Failf(t, "section missing", "no section %q", title)
	return Section{}
}

func TestBuild(t *testing.T) {
	t.Run("empty profile keeps the short bio only", func(t *testing.T) {
		doc := Build(&models.Profile{Person: &models.Person{FullName: "Jane Doe", Email: "jane@example.com"}})
		assert.Equal(t, "Standardized Curriculum Vitae for Jane Doe", doc.Title)
		assert.Equal(t, "Email: jane@example.com", doc.Contact)
		require.Len(t, doc.Sections, 1)
		assert.Equal(t, []string{"No biography provided."}, doc.Sections[0].Paragraphs)
	})

	t.Run("experience newest first with unknown dates last, text sanitized", func(t *testing.T) {
		doc := Build(&models.Profile{
			Person: &models.Person{FullName: "Jane", ShortBio: "Builds “things”…"},
			Experiences: []models.Experience{
				{Title: "Intern", Company: "Acme"},
				{Title: "Engineer", Company: "Acme", Location: "Berlin", Start: y2019, End: m2020, RoleType: "Full-time"},
				{Title: "Lead", Company: "Initech", Start: d2021},
				{Title: "Ghost"},
			},
		})
		assert.Equal(t, []string{`Builds "things"...`}, section(t, doc, "Short Bio").Paragraphs)
		assert.Equal(t, []string{
			"Lead at Initech (15/03/2021 - present)",
			"Engineer at Acme, Berlin (2019 - 06/2020)\nRole: Full-time",
			"Intern at Acme",
		}, section(t, doc, "Professional Experience").Paragraphs)
	})

	t.Run("certifications and awards collapse to a point", func(t *testing.T) {
		doc := Build(&models.Profile{
			Certifications: []models.Certification{{Name: "CKA", Issuer: "CNCF", Start: m2020}},
			Awards:         []models.Award{{Name: "Best Paper", Start: d2021, End: d2021}},
		})
		assert.Equal(t, []string{"CKA - CNCF (06/2020)"}, section(t, doc, "Certifications").Paragraphs)
		assert.Equal(t, []string{"Best Paper (15/03/2021)"}, section(t, doc, "Awards").Paragraphs)
	})

	t.Run("languages by proficiency with unknown last", func(t *testing.T) {
		doc := Build(&models.Profile{Languages: []models.Language{
			{Language: "Klingon", ProficiencyWritten: "fluent-ish"},
			{Language: "English", ProficiencyWritten: "professional", ProficiencySpoken: "native"},
			{Language: "German", ProficiencyWritten: "native", ProficiencySpoken: "native"},
		}})
		assert.Equal(t, []string{
			"German - Written: native, Spoken: native",
			"English - Written: professional, Spoken: native",
			"Klingon - Written: fluent-ish, Spoken: N/A",
		}, section(t, doc, "Languages").Paragraphs)
	})

	t.Run("publications by year then month", func(t *testing.T) {
		doc := Build(&models.Profile{Publications: []models.Publication{
			{Title: "Old", Published: y2019},
			{Title: "Undated", Journal: "J"},
			{Title: "Mid", Published: dates.Of(2021, time.January, 1, dates.PrecisionMonth)},
			{Title: "Late", Authors: "A. B.", Published: d2021},
		}})
		assert.Equal(t, []string{
			"Late, A. B. (15/03/2021)",
			"Mid (01/2021)",
			"Old (2019)",
			"Undated, J",
		}, section(t, doc, "Publications").Paragraphs)
	})

	t.Run("achievements and milestones", func(t *testing.T) {
		doc := Build(&models.Profile{
			PersonalAchievements: []models.PersonalAchievement{{Achievement: "Marathon", Description: "Berlin", Start: y2019, End: y2019}},
			PrivateMilestones:    []models.PrivateMilestone{{Event: "Moved", Start: m2020}},
		})
		assert.Equal(t, []string{"2019 - Marathon: Berlin"}, section(t, doc, "Personal Achievements").Paragraphs)
		assert.Equal(t, []string{"Moved (06/2020 - present)"}, section(t, doc, "Private Milestones").Paragraphs)
	})
}
