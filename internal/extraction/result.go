// Package extraction defines the shape of LLM-extracted CV data and the
// provider contract that produces it.
package extraction

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	pstrings "vitae/pkg/platform/strings"
)

// Result is one extraction of a CV. Every field is optional.
type Result struct {
	FullName             Text                      `json:"full_name"`
	Email                Text                      `json:"email"`
	Phone                Text                      `json:"phone"`
	LinkedIn             Text                      `json:"linkedin"`
	GitHub               Text                      `json:"github"`
	Website              Text                      `json:"website"`
	ShortBio             Text                      `json:"short_bio"`
	Education            List[Education]           `json:"education"`
	Experience           List[Experience]          `json:"professional_experience"`
	Languages            List[Language]            `json:"languages"`
	FurtherEducation     List[FurtherEducation]    `json:"further_education"`
	Certifications       List[Certification]       `json:"certifications"`
	Awards               List[Award]               `json:"awards"`
	Publications         List[Publication]         `json:"publications"`
	PersonalAchievements List[PersonalAchievement] `json:"personal_achievements"`
	PrivateMilestones    List[PrivateMilestone]    `json:"private_milestones"`
}

type Education struct {
	Degree      Text `json:"degree"`
	Field       Text `json:"field"`
	Institution Text `json:"institution"`
	StartDate   Text `json:"start_date"`
	EndDate     Text `json:"end_date"`
}

type Experience struct {
	Title           Text `json:"title"`
	Company         Text `json:"company"`
	Location        Text `json:"location"`
	StartDate       Text `json:"start_date"`
	EndDate         Text `json:"end_date"`
	RoleType        Text `json:"role_type"`
	RoleDescription Text `json:"role_description"`
}

type Language struct {
	Language           Text `json:"language"`
	ProficiencyWritten Text `json:"proficiency_written"`
	ProficiencySpoken  Text `json:"proficiency_spoken"`
}

type FurtherEducation struct {
	Title       Text `json:"title"`
	Institution Text `json:"institution"`
	StartDate   Text `json:"start_date"`
	EndDate     Text `json:"end_date"`
}

type Certification struct {
	Name      Text `json:"name"`
	Issuer    Text `json:"issuer"`
	StartDate Text `json:"start_date"`
	EndDate   Text `json:"end_date"`
}

type Award struct {
	Name      Text `json:"name"`
	AwardedBy Text `json:"awarded_by"`
	StartDate Text `json:"start_date"`
	EndDate   Text `json:"end_date"`
}

// Publication dates come in start_date; end_date is accepted and ignored.
type Publication struct {
	Title     Text `json:"title"`
	Journal   Text `json:"journal"`
	Authors   Text `json:"authors"`
	StartDate Text `json:"start_date"`
	EndDate   Text `json:"end_date"`
}

type PersonalAchievement struct {
	Achievement Text `json:"achievement"`
	Description Text `json:"description"`
	StartDate   Text `json:"start_date"`
	EndDate     Text `json:"end_date"`
}

type PrivateMilestone struct {
	Event       Text `json:"event"`
	Description Text `json:"description"`
	StartDate   Text `json:"start_date"`
	EndDate     Text `json:"end_date"`
}

// Text is a scalar that decodes from a string, number, boolean or null.
// Arrays of scalars are de-duplicated and joined with ", ".
type Text string

func (t Text) String() string { return string(t) }

// Trimmed returns the value with surrounding whitespace removed.
func (t Text) Trimmed() string { return strings.TrimSpace(string(t)) }

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '[':
		var items []Text
		if err := json.Unmarshal(b, &items); err != nil {
			*t = ""
			return nil
		}
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = string(it)
		}
		*t = Text(strings.Join(pstrings.DedupeAndTrim(parts), ", "))
	case '{':
		*t = ""
	case 't', 'f':
		v, err := strconv.ParseBool(string(b))
		if err != nil {
			return err
		}
		*t = Text(strconv.FormatBool(v))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*t = Text(n.String())
	}
	return nil
}

// List decodes a JSON array of objects. null yields an empty list, a single
// object yields a one-element list, and array entries that are not objects
// or do not decode are dropped.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*l = nil
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '{':
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			*l = List[T]{v}
		}
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil
		}
		out := make(List[T], 0, len(raw))
		for _, r := range raw {
			r = bytes.TrimSpace(r)
			if len(r) == 0 || r[0] != '{' {
				continue
			}
			var v T
			if err := json.Unmarshal(r, &v); err != nil {
				continue
			}
			out = append(out, v)
		}
		*l = out
	}
	return nil
}
