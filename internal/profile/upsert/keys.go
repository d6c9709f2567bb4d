package upsert

import (
	"strings"

	"vitae/internal/profile/dates"
	"vitae/internal/profile/models"
	pstrings "vitae/pkg/platform/strings"
)

const keySep = "\x1f"

// compose folds each component and joins them. Components flagged required
// must be non-empty after folding.
func compose(parts ...part) (string, bool) {
	folded := make([]string, len(parts))
	for i, p := range parts {
		folded[i] = pstrings.Fold(p.text)
		if p.required && folded[i] == "" {
			return "", false
		}
	}
	return strings.Join(folded, keySep), true
}

type part struct {
	text     string
	required bool
}

func req(s string) part { return part{text: s, required: true} }
func opt(s string) part { return part{text: s} }

func dateKey(v dates.Value) part {
	if v.IsZero() {
		return part{}
	}
	return part{text: v.Date.Format("2006-01-02")}
}

// Keys holds the natural-key function of every category.
var Keys = struct {
	Education           func(*models.Education) (string, bool)
	Experience          func(*models.Experience) (string, bool)
	Language            func(*models.Language) (string, bool)
	FurtherEducation    func(*models.FurtherEducation) (string, bool)
	Certification       func(*models.Certification) (string, bool)
	Award               func(*models.Award) (string, bool)
	Publication         func(*models.Publication) (string, bool)
	PersonalAchievement func(*models.PersonalAchievement) (string, bool)
	PrivateMilestone    func(*models.PrivateMilestone) (string, bool)
}{
	Education: func(r *models.Education) (string, bool) {
		return compose(req(r.Degree), opt(r.FieldOfStudy), req(r.Institution))
	},
	Experience: func(r *models.Experience) (string, bool) {
		return compose(req(r.Title), req(r.Company), dateKey(r.Start))
	},
	Language: func(r *models.Language) (string, bool) {
		return compose(req(r.Language))
	},
	FurtherEducation: func(r *models.FurtherEducation) (string, bool) {
		return compose(req(r.Title), req(r.Institution))
	},
	Certification: func(r *models.Certification) (string, bool) {
		return compose(req(r.Name), req(r.Issuer))
	},
	Award: func(r *models.Award) (string, bool) {
		return compose(req(r.Name), req(r.AwardedBy))
	},
	Publication: func(r *models.Publication) (string, bool) {
		return compose(req(r.Title), req(r.Journal))
	},
	PersonalAchievement: func(r *models.PersonalAchievement) (string, bool) {
		return compose(req(r.Achievement), opt(r.Description))
	},
	PrivateMilestone: func(r *models.PrivateMilestone) (string, bool) {
		return compose(req(r.Event), opt(r.Description))
	},
}
