package upsert

import (
	"vitae/internal/extraction"
	"vitae/internal/profile/models"
	"vitae/internal/profile/vocab"
	pstrings "vitae/pkg/platform/strings"
)

func text(t extraction.Text) string { return pstrings.Clean(t.String()) }

func (u *Upserter) Educations(existing []models.Education, candidates []extraction.Education) Result[models.Education] {
	in := make([]models.Education, 0, len(candidates))
	for _, c := range candidates {
		in = append(in, models.Education{
			Degree:       text(c.Degree),
			FieldOfStudy: text(c.Field),
			Institution:  text(c.Institution),
			Start:        u.date(c.StartDate.String()),
			End:          u.date(c.EndDate.String()),
		})
	}
	return apply(existing, in, Keys.Education, func(dst *models.Education, src models.Education) bool {
		changed := setDate(&dst.Start, src.Start)
		return setDate(&dst.End, src.End) || changed
	})
}

func (u *Upserter) Experiences(existing []models.Experience, candidates []extraction.Experience) Result[models.Experience] {
	in := make([]models.Experience, 0, len(candidates))
	for _, c := range candidates {
		in = append(in, models.Experience{
			Title:           text(c.Title),
			Company:         text(c.Company),
			Location:        text(c.Location),
			Start:           u.date(c.StartDate.String()),
			End:             u.date(c.EndDate.String()),
			RoleType:        text(c.RoleType),
			RoleDescription: text(c.RoleDescription),
		})
	}
	return apply(existing, in, Keys.Experience, func(dst *models.Experience, src models.Experience) bool {
		changed := setText(&dst.Location, src.Location)
		changed = setText(&dst.RoleType, src.RoleType) || changed
		changed = setText(&dst.RoleDescription, src.RoleDescription) || changed
		changed = setDate(&dst.Start, src.Start) || changed
		return setDate(&dst.End, src.End) || changed
	})
}

func (u *Upserter) Languages(existing []models.Language, candidates []extraction.Language) Result[models.Language] {
	in := make([]models.Language, 0, len(candidates))
	for _, c := range candidates {
		in = append(in, models.Language{
			Language:           text(c.Language),
			ProficiencyWritten: vocab.Proficiency(c.ProficiencyWritten.String()),
			ProficiencySpoken:  vocab.Proficiency(c.ProficiencySpoken.String()),
		})
	}
	return apply(existing, in, Keys.Language, func(dst *models.Language, src models.Language) bool {
		changed := setText(&dst.ProficiencyWritten, src.ProficiencyWritten)
		return setText(&dst.ProficiencySpoken, src.ProficiencySpoken) || changed
	})
}

func (u *Upserter) FurtherEducations(existing []models.FurtherEducation, candidates []extraction.FurtherEducation) Result[models.FurtherEducation] {
	in := make([]models.FurtherEducation, 0, len(candidates))
	for _, c := range candidates {
		in = append(in, models.FurtherEducation{
			Title:       text(c.Title),
			Institution: text(c.Institution),
			Start:       u.date(c.StartDate.String()),
			End:         u.date(c.EndDate.String()),
		})
	}
	return apply(existing, in, Keys.FurtherEducation, func(dst *models.FurtherEducation, src models.FurtherEducation) bool {
		changed := setDate(&dst.Start, src.Start)
		return setDate(&dst.End, src.End) || changed
	})
}

func (u *Upserter) Certifications(existing []models.Certification, candidates []extraction.Certification) Result[models.Certification] {
	in := make([]models.Certification, 0, len(candidates))
	for _, c := range candidates {
		in = append(in, models.Certification{
			Name:   text(c.Name),
			Issuer: text(c.Issuer),
			Start:  u.date(c.StartDate.String()),
			End:    u.date(c.EndDate.String()),
		})
	}
	return apply(existing, in, Keys.Certification, func(dst *models.Certification, src models.Certification) bool {
		changed := setDate(&dst.Start, src.Start)
		return setDate(&dst.End, src.End) || changed
	})
}

func (u *Upserter) Awards(existing []models.Award, candidates []extraction.Award) Result[models.Award] {
	in := make([]models.Award, 0, len(candidates))
	for _, c := range candidates {
		in = append(in, models.Award{
			Name:      text(c.Name),
			AwardedBy: text(c.AwardedBy),
			Start:     u.date(c.StartDate.String()),
			End:       u.date(c.EndDate.String()),
		})
	}
	return apply(existing, in, Keys.Award, func(dst *models.Award, src models.Award) bool {
		changed := setDate(&dst.Start, src.Start)
		return setDate(&dst.End, src.End) || changed
	})
}

// Publications never let an empty incoming author list erase stored authors.
func (u *Upserter) Publications(existing []models.Publication, candidates []extraction.Publication) Result[models.Publication] {
	in := make([]models.Publication, 0, len(candidates))
	for _, c := range candidates {
		in = append(in, models.Publication{
			Title:     text(c.Title),
			Journal:   text(c.Journal),
			Authors:   text(c.Authors),
			Published: u.date(c.StartDate.String()),
		})
	}
	return apply(existing, in, Keys.Publication, func(dst *models.Publication, src models.Publication) bool {
		changed := setDate(&dst.Published, src.Published)
		if src.Authors != "" {
			changed = setText(&dst.Authors, src.Authors) || changed
		}
		return changed
	})
}

func (u *Upserter) PersonalAchievements(existing []models.PersonalAchievement, candidates []extraction.PersonalAchievement) Result[models.PersonalAchievement] {
	in := make([]models.PersonalAchievement, 0, len(candidates))
	for _, c := range candidates {
		in = append(in, models.PersonalAchievement{
			Achievement: text(c.Achievement),
			Description: text(c.Description),
			Start:       u.date(c.StartDate.String()),
			End:         u.date(c.EndDate.String()),
		})
	}
	return apply(existing, in, Keys.PersonalAchievement, func(dst *models.PersonalAchievement, src models.PersonalAchievement) bool {
		changed := setDate(&dst.Start, src.Start)
		return setDate(&dst.End, src.End) || changed
	})
}

func (u *Upserter) PrivateMilestones(existing []models.PrivateMilestone, candidates []extraction.PrivateMilestone) Result[models.PrivateMilestone] {
	in := make([]models.PrivateMilestone, 0, len(candidates))
	for _, c := range candidates {
		in = append(in, models.PrivateMilestone{
			Event:       text(c.Event),
			Description: text(c.Description),
			Start:       u.date(c.StartDate.String()),
			End:         u.date(c.EndDate.String()),
		})
	}
	return apply(existing, in, Keys.PrivateMilestone, func(dst *models.PrivateMilestone, src models.PrivateMilestone) bool {
		changed := setDate(&dst.Start, src.Start)
		return setDate(&dst.End, src.End) || changed
	})
}
