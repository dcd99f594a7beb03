package fields

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"markerid/internal/dates"
	"markerid/internal/vocab"
)

const (
	// CategoryThreshold is the minimum similarity for a vocabulary match.
	CategoryThreshold = 85
	// NoIndex marks an unmatched category; it sorts after every real index.
	NoIndex = math.MaxInt

	maxNameTokens = 3
)

// CategoryMatch is the best vocabulary hit across all tokens of an artifact.
type CategoryMatch struct {
	Value string
	Index int
	Score int
}

// Matched reports whether the category cleared the threshold.
func (m CategoryMatch) Matched() bool {
	return m.Index != NoIndex
}

// Classifier turns cleaned token sequences into FieldSets.
type Classifier struct {
	categoryA *vocab.Set
	categoryB *vocab.Set
	abbrev    vocab.Abbreviations
}

// NewClassifier builds a classifier over the given vocabularies. A nil set
// never matches; a nil abbreviation map leaves Category B untouched.
func NewClassifier(categoryA, categoryB *vocab.Set, abbrev vocab.Abbreviations) *Classifier {
	return &Classifier{categoryA: categoryA, categoryB: categoryB, abbrev: abbrev}
}

// DefaultClassifier uses the built-in regions, conflicts and abbreviations.
func DefaultClassifier() *Classifier {
	return NewClassifier(vocab.Regions(), vocab.Conflicts(), vocab.DefaultAbbreviations())
}

// Clean trims every token and drops the ones without a letter or digit, such
// as page breaks, stray dots and dashes.
func Clean(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if !strings.ContainsFunc(token, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) {
			continue
		}
		out = append(out, token)
	}
	return out
}

// Classify cleans tokens and assigns them to slots. The boolean is false when
// nothing survives cleaning, in which case the FieldSet is empty.
func (c *Classifier) Classify(tokens []string) (FieldSet, bool) {
	var fs FieldSet
	tokens = Clean(tokens)
	switch len(tokens) {
	case 0:
		return fs, false
	case 1:
		fs.FirstName = tokens[0]
		return fs, true
	}

	catA := ClassifyCategory(tokens, c.categoryA)
	catB := ClassifyCategory(tokens, c.categoryB)
	fs.Date1, fs.Date2 = FindDates(tokens)

	boundary := min(catA.Index, catB.Index, maxNameTokens, len(tokens))
	switch boundary {
	case 1:
		fs.FirstName = tokens[0]
	case 2:
		if words := strings.Fields(tokens[0]); len(words) == 2 {
			fs.FirstName, fs.MiddleName = words[0], words[1]
		} else {
			fs.FirstName = tokens[0]
		}
		fs.Surname = tokens[1]
	case 3:
		fs.FirstName = tokens[0]
		fs.MiddleName = tokens[1]
		fs.Surname = tokens[2]
	}

	fs.CategoryA = catA.Value
	fs.CategoryB = c.abbrev.Apply(catB.Value)
	return fs, true
}

// ClassifyCategory finds the best vocabulary entry over all tokens. Ties keep
// the earliest token. Scores below CategoryThreshold yield an empty value and
// NoIndex.
func ClassifyCategory(tokens []string, set *vocab.Set) CategoryMatch {
	best := CategoryMatch{Index: NoIndex}
	found := false
	for i, token := range tokens {
		match := set.Best(token)
		if match.Position < 0 {
			continue
		}
		if !found || match.Score > best.Score {
			best = CategoryMatch{Value: match.Entry, Index: i, Score: match.Score}
			found = true
		}
	}
	if !found || best.Score < CategoryThreshold {
		return CategoryMatch{Index: NoIndex, Score: best.Score}
	}
	return best
}

type scoredToken struct {
	index int
	score int
	text  string
}

// FindDates picks the two most date-like tokens, keeps those reaching
// dates.QualifyingScore and returns them normalized in reading order. A single
// qualifying token is returned as the second (later) date.
func FindDates(tokens []string) (string, string) {
	scored := make([]scoredToken, len(tokens))
	for i, token := range tokens {
		scored[i] = scoredToken{index: i, score: dates.Score(token), text: token}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > 2 {
		scored = scored[:2]
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].index < scored[j].index
	})

	var picked []string
	for _, s := range scored {
		if s.score >= dates.QualifyingScore {
			picked = append(picked, s.text)
		}
	}

	switch len(picked) {
	case 1:
		return "", dates.Normalize(picked[0])
	case 2:
		return dates.Normalize(picked[0]), dates.Normalize(picked[1])
	default:
		return "", ""
	}
}
