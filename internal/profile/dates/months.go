package dates

import "time"

var monthNames = [12]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// monthAliases maps abbreviations, common misspellings and German/French
// spellings seen in CVs onto month numbers. Lookup misses are not months.
var monthAliases = map[string]time.Month{
	"jan": time.January, "janaury": time.January, "januray": time.January, "januar": time.January, "janvier": time.January,
	"feb": time.February, "febuary": time.February, "feburary": time.February, "februrary": time.February, "februar": time.February, "fevrier": time.February, "février": time.February,
	"mar": time.March, "mrach": time.March, "marz": time.March, "märz": time.March, "maerz": time.March, "mars": time.March,
	"apr": time.April, "aprl": time.April, "april": time.April, "avril": time.April,
	"mai": time.May,
	"jun": time.June, "juni": time.June, "juin": time.June,
	"jul": time.July, "juli": time.July, "juillet": time.July,
	"aug": time.August, "agust": time.August, "augst": time.August, "auguts": time.August, "août": time.August,
	"sep": time.September, "sept": time.September, "septmber": time.September, "setpember": time.September, "septembre": time.September,
	"oct": time.October, "okt": time.October, "ocotber": time.October, "octobre": time.October, "oktober": time.October,
	"nov": time.November, "novmber": time.November, "novembre": time.November,
	"dec": time.December, "dez": time.December, "decmber": time.December, "dezember": time.December, "décembre": time.December, "decembre": time.December,
}

func monthByName(s string) (time.Month, bool) {
	for i, name := range monthNames {
		if s == name {
			return time.Month(i + 1), true
		}
	}
	m, ok := monthAliases[s]
	return m, ok
}
