// Package vocab maps free-text vocabulary onto the closed value sets the record
// store understands.
package vocab

import "strings"

// Canonical proficiency levels.
const (
	Native       = "native"
	Professional = "professional"
	Intermediate = "intermediate"
	Basic        = "basic"
	None         = "none"
)

var proficiencyTable = map[string]string{
	"mother tongue":     Native,
	"native speaker":    Native,
	"native":            Native,
	"bilingual":         Native,
	"fluent":            Professional,
	"professional":      Professional,
	"full professional": Professional,
	"business fluent":   Professional,
	"advanced":          Professional,
	"c1":                Professional,
	"c2":                Professional,
	"intermediate":      Intermediate,
	"conversational":    Intermediate,
	"b1":                Intermediate,
	"b2":                Intermediate,
	"beginner":          Basic,
	"elementary":        Basic,
	"basic":             Basic,
	"a1":                Basic,
	"a2":                Basic,
	"none":              None,
	"no knowledge":      None,
}

// proficiencyRank orders the canonical levels from strongest to weakest.
var proficiencyRank = map[string]int{
	Native:       0,
	Professional: 1,
	Intermediate: 2,
	Basic:        3,
	None:         4,
}

// UnknownRank sorts values outside the canonical set after every known level.
const UnknownRank = 99

// Proficiency maps raw onto a canonical level. Values outside the table pass
// through trimmed and lower-cased; empty input stays empty.
func Proficiency(raw string) string {
	s := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if s == "" {
		return ""
	}
	if v, ok := proficiencyTable[s]; ok {
		return v
	}
	return s
}

// ProficiencyRank returns the sort position of a normalized proficiency.
func ProficiencyRank(p string) int {
	if r, ok := proficiencyRank[p]; ok {
		return r
	}
	return UnknownRank
}
