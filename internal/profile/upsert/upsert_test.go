package upsert

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitae/internal/extraction"
	"vitae/internal/profile/dates"
	"vitae/internal/profile/models"
	"vitae/internal/profile/vocab"
)

func experiences() []extraction.Experience {
	return []extraction.Experience{
		{Title: "Engineer", Company: "Acme", StartDate: "2019-03", EndDate: "present", Location: "Berlin"},
		{Title: "Lead", Company: "Initech", StartDate: "2021", EndDate: "2023"},
		{Title: "", Company: "NoTitle Ltd"},
	}
}

// persist assigns IDs the way a store would.
func persist[T any](r Result[T], setID func(*T, int64)) []T {
	out := make([]T, len(r.Records))
	copy(out, r.Records)
	for i := range out {
		setID(&out[i], int64(i+1))
	}
	return out
}

func TestExperiencesInsertThenIdempotent(t *testing.T) {
	u := New(nil)

	first := u.Experiences(nil, experiences())
	assert.Len(t, first.Inserted, 2)
	assert.Empty(t, first.Updated)
	assert.Equal(t, 1, first.Skipped)
	assert.True(t, first.Changed())

	stored := persist(first, func(e *models.Experience, id int64) { e.ID = id })

	second := u.Experiences(stored, experiences())
	assert.Empty(t, second.Inserted)
	assert.Empty(t, second.Updated)
	assert.False(t, second.Changed())
	assert.Equal(t, stored, second.Records)
}

func TestExperiencesUpdateKeepsID(t *testing.T) {
	u := New(nil)
	stored := []models.Experience{{
		ID:       7,
		Title:    "Engineer",
		Company:  "Acme",
		Start:    dates.Of(2019, time.March, 1, dates.PrecisionMonth),
		Location: "Berlin",
	}}

	res := u.Experiences(stored, []extraction.Experience{
		{Title: "  engineer ", Company: "ACME", StartDate: "2019-03", Location: "Munich"},
	})
	require.Len(t, res.Updated, 1)
	assert.Empty(t, res.Inserted)
	assert.Equal(t, int64(7), res.Updated[0].ID)
	assert.Equal(t, "Munich", res.Updated[0].Location)
	assert.Equal(t, "Engineer", res.Records[0].Title)
}

func TestExperiencesDistinctStartDates(t *testing.T) {
	res := New(nil).Experiences(nil, []extraction.Experience{
		{Title: "Engineer", Company: "Acme", StartDate: "2015"},
		{Title: "Engineer", Company: "Acme", StartDate: "2019"},
		{Title: "Engineer", Company: "Acme"},
	})
	assert.Len(t, res.Inserted, 3)
}

func TestInBatchDuplicatesFold(t *testing.T) {
	res := New(nil).Certifications(nil, []extraction.Certification{
		{Name: "CKA", Issuer: "CNCF", StartDate: "2020"},
		{Name: "cka", Issuer: " cncf ", StartDate: "2022"},
	})
	require.Len(t, res.Inserted, 1)
	assert.Empty(t, res.Updated)
	assert.Equal(t, 2022, res.Inserted[0].Start.Date.Year())
	assert.Len(t, res.Records, 1)

	t.Run("conflicting duplicates settle after one pass", func(t *testing.T) {
		u := New(nil)
		batch := []extraction.Experience{
			{Title: "Engineer", Company: "Acme", StartDate: "2019", Location: "Berlin"},
			{Title: "engineer", Company: "ACME", StartDate: "2019", Location: "Munich"},
		}

		first := u.Experiences(nil, batch)
		require.Len(t, first.Inserted, 1)
		assert.Empty(t, first.Updated)
		assert.Equal(t, "Munich", first.Inserted[0].Location)

		stored := persist(first, func(e *models.Experience, id int64) { e.ID = id })
		second := u.Experiences(stored, batch)
		assert.False(t, second.Changed())
		assert.Equal(t, stored, second.Records)
	})
}

// runTwice persists the first pass and reruns the same batch over it.
func runTwice[T any](t *testing.T, run func(existing []T) Result[T], setID func(*T, int64)) {
	t.Helper()
	first := run(nil)
	require.True(t, first.Changed())
	stored := persist(first, setID)

	second := run(stored)
	assert.Empty(t, second.Inserted)
	assert.Empty(t, second.Updated)
	assert.Equal(t, stored, second.Records)
}

func TestRepeatedKeysAreIdempotent(t *testing.T) {
	u := New(nil)

	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{"education", func(t *testing.T) {
			batch := []extraction.Education{
				{Degree: "MSc", Institution: "ETH", StartDate: "2015", EndDate: "2017"},
				{Degree: "msc", Institution: "eth", StartDate: "2016"},
			}
			runTwice(t, func(e []models.Education) Result[models.Education] { return u.Educations(e, batch) },
				func(r *models.Education, id int64) { r.ID = id })
		}},
		{"experience", func(t *testing.T) {
			batch := []extraction.Experience{
				{Title: "Engineer", Company: "Acme", StartDate: "2019", RoleType: "full-time"},
				{Title: "Engineer", Company: "Acme", StartDate: "2019", RoleType: "contract", EndDate: "2021"},
			}
			runTwice(t, func(e []models.Experience) Result[models.Experience] { return u.Experiences(e, batch) },
				func(r *models.Experience, id int64) { r.ID = id })
		}},
		{"language", func(t *testing.T) {
			batch := []extraction.Language{
				{Language: "French", ProficiencySpoken: "basic"},
				{Language: "french", ProficiencySpoken: "fluent", ProficiencyWritten: "basic"},
			}
			runTwice(t, func(e []models.Language) Result[models.Language] { return u.Languages(e, batch) },
				func(r *models.Language, id int64) { r.ID = id })
		}},
		{"further education", func(t *testing.T) {
			batch := []extraction.FurtherEducation{
				{Title: "Go Workshop", Institution: "GopherCon", StartDate: "2020"},
				{Title: "go workshop", Institution: "gophercon", StartDate: "2021"},
			}
			runTwice(t, func(e []models.FurtherEducation) Result[models.FurtherEducation] { return u.FurtherEducations(e, batch) },
				func(r *models.FurtherEducation, id int64) { r.ID = id })
		}},
		{"certification", func(t *testing.T) {
			batch := []extraction.Certification{
				{Name: "CKA", Issuer: "CNCF", StartDate: "2020"},
				{Name: "CKA", Issuer: "CNCF", StartDate: "2022", EndDate: "2025"},
			}
			runTwice(t, func(e []models.Certification) Result[models.Certification] { return u.Certifications(e, batch) },
				func(r *models.Certification, id int64) { r.ID = id })
		}},
		{"award", func(t *testing.T) {
			batch := []extraction.Award{
				{Name: "Best Paper", AwardedBy: "ACM", StartDate: "2018"},
				{Name: "best paper", AwardedBy: "acm", StartDate: "2019"},
			}
			runTwice(t, func(e []models.Award) Result[models.Award] { return u.Awards(e, batch) },
				func(r *models.Award, id int64) { r.ID = id })
		}},
		{"publication", func(t *testing.T) {
			batch := []extraction.Publication{
				{Title: "Paper", Journal: "Nature", Authors: "A. One", StartDate: "2020"},
				{Title: "paper", Journal: "nature", Authors: "A. One, B. Two"},
				{Title: "Paper", Journal: "Nature", StartDate: "2021"},
			}
			runTwice(t, func(e []models.Publication) Result[models.Publication] { return u.Publications(e, batch) },
				func(r *models.Publication, id int64) { r.ID = id })
		}},
		{"personal achievement", func(t *testing.T) {
			batch := []extraction.PersonalAchievement{
				{Achievement: "Marathon", StartDate: "2017"},
				{Achievement: "marathon", StartDate: "2019"},
			}
			runTwice(t, func(e []models.PersonalAchievement) Result[models.PersonalAchievement] { return u.PersonalAchievements(e, batch) },
				func(r *models.PersonalAchievement, id int64) { r.ID = id })
		}},
		{"private milestone", func(t *testing.T) {
			batch := []extraction.PrivateMilestone{
				{Event: "Wedding", StartDate: "2018-06"},
				{Event: "Wedding", StartDate: "2018-07"},
			}
			runTwice(t, func(e []models.PrivateMilestone) Result[models.PrivateMilestone] { return u.PrivateMilestones(e, batch) },
				func(r *models.PrivateMilestone, id int64) { r.ID = id })
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.run)
	}
}

func TestCandidateOrderDoesNotMatter(t *testing.T) {
	u := New(nil)
	stored := []models.Experience{{ID: 1, Title: "Lead", Company: "Initech", Location: "Paris"}}
	batch := []extraction.Experience{
		{Title: "Engineer", Company: "Acme", StartDate: "2019", Location: "Berlin"},
		{Title: "Lead", Company: "Initech", Location: "London"},
		{Title: "Engineer", Company: "Acme", StartDate: "2019", Location: "Berlin"},
		{Title: "Intern", Company: "Globex", StartDate: "2014"},
		{Company: "Nameless"},
	}
	reversed := slices.Clone(batch)
	slices.Reverse(reversed)
	rotated := append(slices.Clone(batch[2:]), batch[:2]...)

	want := u.Experiences(stored, batch)
	for _, order := range [][]extraction.Experience{reversed, rotated} {
		got := u.Experiences(stored, order)
		assert.ElementsMatch(t, want.Records, got.Records)
		assert.ElementsMatch(t, want.Inserted, got.Inserted)
		assert.ElementsMatch(t, want.Updated, got.Updated)
		assert.Equal(t, want.Skipped, got.Skipped)
	}
}

func TestNaturalKeyUniqueness(t *testing.T) {
	u := New(nil)
	candidates := []extraction.Education{
		{Degree: "MSc", Field: "Physics", Institution: "ETH", StartDate: "2015"},
		{Degree: "MSc", Field: "physics", Institution: "eth", EndDate: "2017"},
		{Degree: "BSc", Institution: "ETH"},
		{Degree: "PhD"},
	}
	res := u.Educations(nil, candidates)
	res = u.Educations(res.Records, candidates)

	seen := map[string]bool{}
	for i := range res.Records {
		k, ok := Keys.Education(&res.Records[i])
		require.True(t, ok)
		assert.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
	assert.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Skipped)
}

func TestPublicationsKeepAuthors(t *testing.T) {
	stored := []models.Publication{{ID: 1, Title: "Paper", Journal: "Nature", Authors: "A. One, B. Two"}}

	res := New(nil).Publications(stored, []extraction.Publication{
		{Title: "Paper", Journal: "Nature", Authors: ""},
	})
	assert.False(t, res.Changed())
	assert.Equal(t, "A. One, B. Two", res.Records[0].Authors)

	res = New(nil).Publications(stored, []extraction.Publication{
		{Title: "Paper", Journal: "Nature", Authors: "A. One"},
	})
	require.Len(t, res.Updated, 1)
	assert.Equal(t, "A. One", res.Records[0].Authors)
}

func TestLanguagesNormalizeProficiency(t *testing.T) {
	res := New(nil).Languages(nil, []extraction.Language{
		{Language: "German", ProficiencyWritten: "Mother tongue", ProficiencySpoken: "C2"},
		{Language: "Spanish", ProficiencySpoken: "Tourist"},
		{Language: ""},
	})
	require.Len(t, res.Inserted, 2)
	assert.Equal(t, vocab.Native, res.Inserted[0].ProficiencyWritten)
	assert.Equal(t, vocab.Professional, res.Inserted[0].ProficiencySpoken)
	assert.Equal(t, "", res.Inserted[1].ProficiencyWritten)
	assert.Equal(t, "tourist", res.Inserted[1].ProficiencySpoken)
	assert.Equal(t, 1, res.Skipped)
}

func TestOptionalKeyComponents(t *testing.T) {
	u := New(nil)

	res := u.PersonalAchievements(nil, []extraction.PersonalAchievement{
		{Achievement: "Marathon", Description: "Berlin"},
		{Achievement: "Marathon", Description: "Boston"},
		{Achievement: "Marathon"},
		{Description: "no title"},
	})
	assert.Len(t, res.Inserted, 3)
	assert.Equal(t, 1, res.Skipped)

	ms := u.PrivateMilestones(nil, []extraction.PrivateMilestone{
		{Event: "Wedding", StartDate: "2018-06"},
		{Event: "wedding", StartDate: "2018-07"},
	})
	require.Len(t, ms.Inserted, 1)
	assert.Equal(t, time.July, ms.Inserted[0].Start.Date.Month())
}

func TestEmptyInput(t *testing.T) {
	u := New(nil)
	assert.Empty(t, u.Awards(nil, nil).Records)
	assert.Empty(t, u.FurtherEducations(nil, nil).Records)

	stored := []models.Award{{ID: 3, Name: "Prize", AwardedBy: "Org"}}
	res := u.Awards(stored, nil)
	assert.Equal(t, stored, res.Records)
	assert.False(t, res.Changed())
}
