package models

import "slices"

// Profile is a Person together with every sub-record it owns.
type Profile struct {
	Person               *Person
	Educations           []Education
	Experiences          []Experience
	Languages            []Language
	FurtherEducations    []FurtherEducation
	Certifications       []Certification
	Awards               []Award
	Publications         []Publication
	PersonalAchievements []PersonalAchievement
	PrivateMilestones    []PrivateMilestone
}

// RecordCount returns the number of sub-records across all categories.
func (p *Profile) RecordCount() int {
	return len(p.Educations) + len(p.Experiences) + len(p.Languages) +
		len(p.FurtherEducations) + len(p.Certifications) + len(p.Awards) +
		len(p.Publications) + len(p.PersonalAchievements) + len(p.PrivateMilestones)
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	return &Profile{
		Person:               p.Person.Clone(),
		Educations:           slices.Clone(p.Educations),
		Experiences:          slices.Clone(p.Experiences),
		Languages:            slices.Clone(p.Languages),
		FurtherEducations:    slices.Clone(p.FurtherEducations),
		Certifications:       slices.Clone(p.Certifications),
		Awards:               slices.Clone(p.Awards),
		Publications:         slices.Clone(p.Publications),
		PersonalAchievements: slices.Clone(p.PersonalAchievements),
		PrivateMilestones:    slices.Clone(p.PrivateMilestones),
	}
}
