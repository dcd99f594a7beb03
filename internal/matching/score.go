package matching

import (
	"math"
	"strings"
	"unicode/utf8"

	"markerid/internal/fields"
	"markerid/internal/roster"
	"markerid/internal/textutil"
)

// ColumnMap maps FieldSet slots to roster column names. Slots without a
// column are never compared.
type ColumnMap map[fields.Slot]string

// DefaultColumns returns the conventional roster headers for each slot.
func DefaultColumns() ColumnMap {
	return ColumnMap{
		fields.SlotFirstName:  "First Name",
		fields.SlotMiddleName: "Middle Name",
		fields.SlotSurname:    "Surname",
		fields.SlotCategoryA:  "State",
		fields.SlotCategoryB:  "Conflict",
		fields.SlotDate1:      "Birth Date",
		fields.SlotDate2:      "Death Date",
	}
}

// Restrict drops mappings whose column is missing from r.
func (m ColumnMap) Restrict(r *roster.Roster) ColumnMap {
	out := make(ColumnMap, len(m))
	for slot, col := range m {
		col = strings.TrimSpace(col)
		if col == "" || !r.HasColumn(col) {
			continue
		}
		out[slot] = col
	}
	return out
}

type pair struct {
	artifact string
	record   string
}

// comparable returns the slot values present on both sides, in slot order.
func (m ColumnMap) comparable(fs fields.FieldSet, rec *roster.Record) []pair {
	var out []pair
	for _, slot := range fields.AllSlots {
		col, ok := m[slot]
		if !ok {
			continue
		}
		a := fs.Get(slot)
		b := rec.Value(col)
		if a == "" || b == "" {
			continue
		}
		out = append(out, pair{artifact: a, record: b})
	}
	return out
}

// Score blends the ordered and unordered similarity of fs against rec. The
// second result is false when the two share no comparable slot. The
// downgrade guard is not applied.
func Score(fs fields.FieldSet, rec *roster.Record, columns ColumnMap) (float64, bool) {
	pairs := columns.comparable(fs, rec)
	if len(pairs) == 0 {
		return 0, false
	}
	return blend(orderedSimilarity(pairs), unorderedSimilarity(pairs)), true
}

func orderedSimilarity(pairs []pair) float64 {
	var total, count float64
	for _, p := range pairs {
		a := strings.ToUpper(p.artifact)
		b := strings.ToUpper(p.record)
		score := float64(textutil.Ratio(a, b))
		total += score
		count++
		if score == 100 && utf8.RuneCountInString(a) > 1 && utf8.RuneCountInString(b) > 1 {
			total += score
			count++
		}
	}
	return total / count
}

func unorderedSimilarity(pairs []pair) float64 {
	left := make([]string, len(pairs))
	right := make([]string, len(pairs))
	for i, p := range pairs {
		left[i] = p.artifact
		right[i] = p.record
	}
	a := strings.ToUpper(strings.Join(left, " "))
	b := strings.ToUpper(strings.Join(right, " "))
	return float64(textutil.TokenSetRatio(a, b))
}

func blend(ordered, unordered float64) float64 {
	return math.Round((0.1*ordered+0.9*unordered)*10) / 10
}

// guard applies the downgrade guard: a score below the record's standing
// claim becomes 0.
func guard(score, claim float64) float64 {
	if score < claim {
		return 0
	}
	return score
}

// comparisonText joins the comparable values of each side for edit distance
// listings.
func comparisonText(pairs []pair) (string, string) {
	left := make([]string, len(pairs))
	right := make([]string, len(pairs))
	for i, p := range pairs {
		left[i] = p.artifact
		right[i] = p.record
	}
	return strings.Join(left, " "), strings.Join(right, " ")
}
