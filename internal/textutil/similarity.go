package textutil

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// Ratio scores the similarity of a and b on a 0-100 scale without any
// preprocessing. Identical strings score 100; an empty side scores 0.
func Ratio(a, b string) int {
	if a == b && a != "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	lensum := len(a) + len(b)
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return int(math.RoundToEven(float64(100*(lensum-dist)) / float64(lensum)))
}

// PartialRatio is the best Ratio of the shorter input against every window of
// the same length in the longer one.
func PartialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	best := 0
	for start := 0; start+len(short) <= len(long); start++ {
		score := Ratio(short, long[start:start+len(short)])
		if score == 100 {
			return 100
		}
		if score > best {
			best = score
		}
	}
	return best
}

// TokenSetRatio processes both inputs, splits them into word sets and returns
// the best Ratio among the shared words and each side's shared+remaining words.
func TokenSetRatio(a, b string) int {
	pa := Process(a)
	pb := Process(b)
	if pa == "" || pb == "" {
		return 0
	}
	return tokenSet(pa, pb, Ratio)
}

// WRatio weighs Ratio against token and partial variants, scaling the
// partial ones down when the inputs differ a lot in length. Both sides are
// processed first.
func WRatio(a, b string) int {
	pa := Process(a)
	pb := Process(b)
	if pa == "" || pb == "" {
		return 0
	}

	const unbaseScale = 0.95
	base := float64(Ratio(pa, pb))
	lenRatio := float64(max(len(pa), len(pb))) / float64(min(len(pa), len(pb)))

	if lenRatio < 1.5 {
		sorted := float64(Ratio(sortedWords(pa), sortedWords(pb))) * unbaseScale
		set := float64(tokenSet(pa, pb, Ratio)) * unbaseScale
		return int(math.RoundToEven(max(base, sorted, set)))
	}

	partialScale := 0.9
	if lenRatio > 8 {
		partialScale = 0.6
	}
	partial := float64(PartialRatio(pa, pb)) * partialScale
	sorted := float64(PartialRatio(sortedWords(pa), sortedWords(pb))) * unbaseScale * partialScale
	set := float64(tokenSet(pa, pb, PartialRatio)) * unbaseScale * partialScale
	return int(math.RoundToEven(max(base, partial, sorted, set)))
}

// tokenSet scores the shared words of pa and pb against each side's shared
// plus remaining words with scorer, keeping the best.
func tokenSet(pa, pb string, scorer func(string, string) int) int {
	setA := wordSet(pa)
	setB := wordSet(pb)

	var shared, onlyA, onlyB []string
	for word := range setA {
		if _, ok := setB[word]; ok {
			shared = append(shared, word)
		} else {
			onlyA = append(onlyA, word)
		}
	}
	for word := range setB {
		if _, ok := setA[word]; !ok {
			onlyB = append(onlyB, word)
		}
	}
	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(shared, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	best := scorer(sect, combinedA)
	if score := scorer(sect, combinedB); score > best {
		best = score
	}
	if score := scorer(combinedA, combinedB); score > best {
		best = score
	}
	return best
}

func sortedWords(value string) string {
	words := strings.Fields(value)
	sort.Strings(words)
	return strings.Join(words, " ")
}

// EditDistance returns the case-insensitive Levenshtein distance between a and b.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(strings.ToUpper(a), strings.ToUpper(b))
}

func wordSet(value string) map[string]struct{} {
	words := strings.Fields(value)
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}
