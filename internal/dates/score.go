package dates

import (
	"strings"

	"markerid/internal/textutil"
	"markerid/internal/vocab"
)

// QualifyingScore is the minimum Score for a token to be treated as a date.
const QualifyingScore = 65

// Score rates how date-like token is on a 0-100 scale. A bare year between
// 1700 and 2100 scores 100 outright; otherwise the score is the best
// case-sensitive similarity of any word to an uppercase month name, so
// lowercase surnames such as "Jones" do not read as JUNE.
func Score(token string) int {
	best := 0
	for _, word := range strings.Fields(token) {
		if n, ok := digitsValue(word); ok && n >= minYear && n <= maxYear {
			return 100
		}
		for _, month := range vocab.MonthNames() {
			if score := textutil.Ratio(word, month); score > best {
				best = score
			}
		}
	}
	return best
}
