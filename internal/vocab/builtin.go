package vocab

import (
	"strings"
	"sync"
)

var regionNames = []string{
	"ALABAMA", "ALASKA", "ARIZONA", "ARKANSAS", "CALIFORNIA", "COLORADO",
	"CONNECTICUT", "DELAWARE", "FLORIDA", "GEORGIA", "HAWAII", "IDAHO",
	"ILLINOIS", "INDIANA", "IOWA", "KANSAS", "KENTUCKY", "LOUISIANA", "MAINE",
	"MARYLAND", "MASSACHUSETTS", "MICHIGAN", "MINNESOTA", "MISSISSIPPI",
	"MISSOURI", "MONTANA", "NEBRASKA", "NEVADA", "NEW HAMPSHIRE", "NEW JERSEY",
	"NEW MEXICO", "NEW YORK", "NORTH CAROLINA", "NORTH DAKOTA", "OHIO",
	"OKLAHOMA", "OREGON", "PENNSYLVANIA", "RHODE ISLAND", "SOUTH CAROLINA",
	"SOUTH DAKOTA", "TENNESSEE", "TEXAS", "UTAH", "VERMONT", "VIRGINIA",
	"WASHINGTON", "WEST VIRGINIA", "WISCONSIN", "WYOMING",
}

var conflictNames = []string{
	"CIVIL WAR",
	"SPANISH AMERICAN WAR",
	"WORLD WAR I",
	"WORLD WAR II",
	"KOREA",
	"VIETNAM",
}

var monthNames = []string{
	"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

var (
	regionsOnce   = sync.OnceValue(func() *Set { return NewSet("regions", regionNames) })
	conflictsOnce = sync.OnceValue(func() *Set { return NewSet("conflicts", conflictNames) })
)

// Regions returns the built-in Category A vocabulary (US state names).
func Regions() *Set { return regionsOnce() }

// Conflicts returns the built-in Category B vocabulary (conflict names).
func Conflicts() *Set { return conflictsOnce() }

// RegionNames returns a copy of the built-in region names.
func RegionNames() []string { return append([]string(nil), regionNames...) }

// ConflictNames returns a copy of the built-in conflict names.
func ConflictNames() []string { return append([]string(nil), conflictNames...) }

// MonthNames returns the uppercase month names in calendar order.
func MonthNames() []string { return append([]string(nil), monthNames...) }

// MonthNumber maps an exact month name (any case) to 1-12, or 0 when unknown.
func MonthNumber(name string) int {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, month := range monthNames {
		if month == name {
			return i + 1
		}
	}
	return 0
}

// Abbreviations rewrites verbose canonical entries into their short forms.
type Abbreviations map[string]string

// DefaultAbbreviations collapses the two world war labels.
func DefaultAbbreviations() Abbreviations {
	return Abbreviations{
		"WORLD WAR I":  "WWI",
		"WORLD WAR II": "WWII",
	}
}

// Apply returns the short form of value when one is configured.
func (a Abbreviations) Apply(value string) string {
	if short, ok := a[strings.ToUpper(strings.TrimSpace(value))]; ok {
		return short
	}
	return value
}

// NewAbbreviations normalizes configured keys to the canonical uppercase form.
func NewAbbreviations(values map[string]string) Abbreviations {
	out := make(Abbreviations, len(values))
	for long, short := range values {
		long = strings.ToUpper(strings.TrimSpace(long))
		if long == "" {
			continue
		}
		out[long] = strings.TrimSpace(short)
	}
	return out
}
