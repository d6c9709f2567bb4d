// Package timeline turns a merged profile into dated events and lays them
// out on lanes for rendering.
package timeline

import (
	"time"

	"vitae/internal/profile/dates"
	"vitae/internal/profile/models"
)

// Event is one dated entry of a profile. A zero End marks a point event.
type Event struct {
	Category models.Category
	Title    string
	Start    time.Time
	End      time.Time
}

// Point reports whether the event has no duration.
func (e Event) Point() bool {
	return e.End.IsZero()
}

// Collect derives the events of p. Records without a start date are
// dropped. Experience and education entries with no end, or an end equal to
// the start, run until today; other categories become point events.
func Collect(p *models.Profile, today time.Time) []Event {
	if p == nil {
		return nil
	}
	today = dates.Round(today.UTC(), dates.PrecisionDay)

	var events []Event
	add := func(cat models.Category, title string, start, end dates.Value) {
		if start.IsZero() {
			return
		}
		e := Event{Category: cat, Title: title, Start: start.Rounded()}
		if !end.IsZero() {
			e.End = end.Rounded()
		}
		if e.End.Equal(e.Start) {
			e.End = time.Time{}
		}
		if e.End.IsZero() && ongoing(cat) {
			e.End = today
		}
		events = append(events, e)
	}

	for _, r := range p.Experiences {
		add(models.CategoryExperience, r.Title, r.Start, r.End)
	}
	for _, r := range p.Educations {
		add(models.CategoryEducation, r.Degree, r.Start, r.End)
	}
	for _, r := range p.FurtherEducations {
		add(models.CategoryFurtherEducation, r.Title, r.Start, r.End)
	}
	for _, r := range p.Certifications {
		add(models.CategoryCertification, r.Name, r.Start, r.End)
	}
	for _, r := range p.Awards {
		add(models.CategoryAward, r.Name, r.Start, r.End)
	}
	for _, r := range p.Publications {
		add(models.CategoryPublication, r.Title, r.Published, dates.Value{})
	}
	for _, r := range p.PersonalAchievements {
		add(models.CategoryPersonalAchievement, r.Achievement, r.Start, r.End)
	}
	for _, r := range p.PrivateMilestones {
		add(models.CategoryPrivateMilestone, r.Event, r.Start, r.End)
	}
	return events
}

func ongoing(cat models.Category) bool {
	return cat == models.CategoryExperience || cat == models.CategoryEducation
}
