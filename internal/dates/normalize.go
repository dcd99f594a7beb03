package dates

import (
	"fmt"
	"strconv"
	"strings"

	"markerid/internal/textutil"
	"markerid/internal/vocab"
)

const (
	minYear = 1700
	maxYear = 2100
)

type part int

const (
	partYear part = iota
	partMonth
	partDay
	partMonthOrDay
	partMonthOrYear
	partUnknown
)

// IsCanonical reports whether value is already YYYY-MM-DD with a year strictly
// between 1700 and 2100 and a zero-padded month and day in range.
func IsCanonical(value string) bool {
	pieces := strings.Split(value, "-")
	if len(pieces) != 3 {
		return false
	}
	year, month, day := pieces[0], pieces[1], pieces[2]
	if len(year) != 4 || len(month) != 2 || len(day) != 2 {
		return false
	}
	y, ok := digitsValue(year)
	if !ok || y <= minYear || y >= maxYear {
		return false
	}
	m, ok := digitsValue(month)
	if !ok || m < 1 || m > 12 {
		return false
	}
	d, ok := digitsValue(day)
	if !ok || d < 1 || d > 31 {
		return false
	}
	return true
}

// Normalize converts one free-form date token into YYYY-MM-DD. Components that
// cannot be resolved are left empty; if nothing resolves the result is "".
// Canonical input is returned unchanged.
func Normalize(raw string) string {
	if IsCanonical(raw) {
		return raw
	}

	fragments := splitFragments(raw)
	kinds := make([]part, len(fragments))
	for i, fragment := range fragments {
		kinds[i] = classifyFragment(fragment)
	}

	var year, month, day string

	for i, fragment := range fragments {
		switch {
		case kinds[i] == partYear && year == "":
			year = fragment
		case kinds[i] == partDay && day == "":
			day = fragment
		case kinds[i] == partMonth && month == "":
			month += fragment
		}
	}

	for i, fragment := range fragments {
		switch kinds[i] {
		case partMonthOrDay:
			if month != "" || day == "" {
				day = fragment
			} else {
				month += fragment
			}
		case partMonthOrYear:
			if month != "" || year == "" {
				year = fragment
			} else {
				month += fragment
			}
		}
	}

	for i, fragment := range fragments {
		if kinds[i] != partUnknown {
			continue
		}
		switch {
		case year == "":
			year = fragment
		case month == "":
			month = fragment
		case day == "":
			day = fragment
		}
	}

	if month != "" {
		month = resolveMonth(month)
	}

	out := pad(year, 4) + "-" + pad(month, 2) + "-" + pad(day, 2)
	if out == "--" {
		return ""
	}
	return out
}

func splitFragments(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return !isASCIILetter(r) && !isASCIIDigit(r)
	})
}

func classifyFragment(fragment string) part {
	switch {
	case isDigits(fragment):
		n, ok := digitsValue(fragment)
		switch {
		case !ok:
			return partMonthOrYear
		case n > minYear && n < maxYear:
			return partYear
		case n >= 13 && n <= 31:
			return partDay
		case n > 31:
			return partMonthOrYear
		default:
			return partMonthOrDay
		}
	case isLetters(fragment):
		return partMonth
	default:
		return partUnknown
	}
}

// resolveMonth maps month text to a two-digit number. Purely numeric values
// pass through; text with letters takes the first month name with the best
// WRatio and is left blank when nothing is similar at all.
func resolveMonth(month string) string {
	if isDigits(month) {
		return month
	}
	if n := vocab.MonthNumber(month); n > 0 {
		return fmt.Sprintf("%02d", n)
	}
	best, bestScore := 0, 0
	for i, name := range vocab.MonthNames() {
		score := textutil.WRatio(month, name)
		if score > bestScore {
			best, bestScore = i+1, score
		}
	}
	if bestScore == 0 {
		return ""
	}
	return fmt.Sprintf("%02d", best)
}

func pad(value string, width int) string {
	n, ok := digitsValue(value)
	if !ok {
		return value
	}
	return fmt.Sprintf("%0*d", width, n)
}

func digitsValue(value string) (int, bool) {
	if !isDigits(value) {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !isASCIIDigit(r) {
			return false
		}
	}
	return true
}

func isLetters(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !isASCIILetter(r) {
			return false
		}
	}
	return true
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
