package vocab

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"markerid/internal/textutil"
)

const defaultCleanupInterval = 10 * time.Minute

// Match is the best vocabulary entry for one token.
type Match struct {
	Entry    string
	Score    int
	Position int
}

// Set is an ordered, deduplicated vocabulary with a memoized best-match lookup.
type Set struct {
	name      string
	entries   []string
	processed []string
	memo      *gocache.Cache
}

// Option customizes a Set.
type Option func(*setOptions)

type setOptions struct {
	ttl time.Duration
}

// WithCacheTTL bounds how long a memoized lookup is kept. Zero or negative
// keeps entries for the life of the set.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *setOptions) {
		o.ttl = ttl
	}
}

// NewSet builds a vocabulary from entries. Entries are trimmed and uppercased;
// duplicates and blanks are dropped while the first-seen order is kept.
func NewSet(name string, entries []string, opts ...Option) *Set {
	options := setOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	ttl := options.ttl
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	seen := make(map[string]struct{}, len(entries))
	set := &Set{
		name: name,
		memo: gocache.New(ttl, defaultCleanupInterval),
	}
	for _, entry := range entries {
		entry = strings.ToUpper(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		set.entries = append(set.entries, entry)
		set.processed = append(set.processed, textutil.Process(entry))
	}
	return set
}

// Name returns the vocabulary name used in logs.
func (s *Set) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Entries returns a copy of the canonical entries in order.
func (s *Set) Entries() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports the number of entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Best returns the entry most similar to token after processing both sides.
// Ties resolve to the earliest entry. An empty set returns a zero Match with
// Position -1.
func (s *Set) Best(token string) Match {
	if s == nil || len(s.entries) == 0 {
		return Match{Position: -1}
	}
	key := textutil.Process(strings.ToUpper(token))
	if cached, ok := s.memo.Get(key); ok {
		return cached.(Match)
	}

	best := Match{Position: -1}
	for i, candidate := range s.processed {
		score := textutil.Ratio(key, candidate)
		if best.Position < 0 || score > best.Score {
			best = Match{Entry: s.entries[i], Score: score, Position: i}
		}
	}
	s.memo.Set(key, best, gocache.DefaultExpiration)
	return best
}
