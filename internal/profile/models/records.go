package models

import (
	"vitae/internal/profile/dates"
	id "vitae/pkg/domain"
)

// Category names one of the nine sub-record collections.
type Category string

const (
	CategoryEducation           Category = "education"
	CategoryExperience          Category = "experience"
	CategoryLanguage            Category = "language"
	CategoryFurtherEducation    Category = "further_education"
	CategoryCertification       Category = "certification"
	CategoryAward               Category = "award"
	CategoryPublication         Category = "publication"
	CategoryPersonalAchievement Category = "personal_achievement"
	CategoryPrivateMilestone    Category = "private_milestone"
)

// Categories lists every category in storage order.
var Categories = []Category{
	CategoryEducation,
	CategoryExperience,
	CategoryLanguage,
	CategoryFurtherEducation,
	CategoryCertification,
	CategoryAward,
	CategoryPublication,
	CategoryPersonalAchievement,
	CategoryPrivateMilestone,
}

type Education struct {
	ID           int64
	PersonID     id.PersonID
	Degree       string
	FieldOfStudy string
	Institution  string
	Start        dates.Value
	End          dates.Value
}

type Experience struct {
	ID              int64
	PersonID        id.PersonID
	Title           string
	Company         string
	Location        string
	Start           dates.Value
	End             dates.Value
	RoleType        string
	RoleDescription string
}

type Language struct {
	ID                 int64
	PersonID           id.PersonID
	Language           string
	ProficiencyWritten string
	ProficiencySpoken  string
}

type FurtherEducation struct {
	ID          int64
	PersonID    id.PersonID
	Title       string
	Institution string
	Start       dates.Value
	End         dates.Value
}

type Certification struct {
	ID       int64
	PersonID id.PersonID
	Name     string
	Issuer   string
	Start    dates.Value
	End      dates.Value
}

type Award struct {
	ID        int64
	PersonID  id.PersonID
	Name      string
	AwardedBy string
	Start     dates.Value
	End       dates.Value
}

type Publication struct {
	ID        int64
	PersonID  id.PersonID
	Title     string
	Journal   string
	Authors   string
	Published dates.Value
}

type PersonalAchievement struct {
	ID          int64
	PersonID    id.PersonID
	Achievement string
	Description string
	Start       dates.Value
	End         dates.Value
}

type PrivateMilestone struct {
	ID          int64
	PersonID    id.PersonID
	Event       string
	Description string
	Start       dates.Value
	End         dates.Value
}

// RecordID and Assign give stores uniform access to the row identity of every
// sub-record type.

func (r Education) RecordID() int64 { return r.ID }
func (r *Education) Assign(rowID int64, owner id.PersonID) { r.ID, r.PersonID = rowID, owner }

func (r Experience) RecordID() int64 { return r.ID }
func (r *Experience) Assign(rowID int64, owner id.PersonID) { r.ID, r.PersonID = rowID, owner }

func (r Language) RecordID() int64 { return r.ID }
func (r *Language) Assign(rowID int64, owner id.PersonID) { r.ID, r.PersonID = rowID, owner }

func (r FurtherEducation) RecordID() int64 { return r.ID }
func (r *FurtherEducation) Assign(rowID int64, owner id.PersonID) { r.ID, r.PersonID = rowID, owner }

func (r Certification) RecordID() int64 { return r.ID }
func (r *Certification) Assign(rowID int64, owner id.PersonID) { r.ID, r.PersonID = rowID, owner }

func (r Award) RecordID() int64 { return r.ID }
func (r *Award) Assign(rowID int64, owner id.PersonID) { r.ID, r.PersonID = rowID, owner }

func (r Publication) RecordID() int64 { return r.ID }
func (r *Publication) Assign(rowID int64, owner id.PersonID) { r.ID, r.PersonID = rowID, owner }

func (r PersonalAchievement) RecordID() int64 { return r.ID }
func (r *PersonalAchievement) Assign(rowID int64, owner id.PersonID) { r.ID, r.PersonID = rowID, owner }

func (r PrivateMilestone) RecordID() int64 { return r.ID }
func (r *PrivateMilestone) Assign(rowID int64, owner id.PersonID) { r.ID, r.PersonID = rowID, owner }
