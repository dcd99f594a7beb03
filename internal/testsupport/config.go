package testsupport

import (
	"path/filepath"
	"testing"

	"markerid/internal/config"
)

// DefaultRoster is the roster written by NewConfig unless WithRoster
// replaces it.
const DefaultRoster = `Section,Site,First Name,Surname,State,Fuzziness
A,1,JOHN,SMITH,OHIO,0
A,2,MARY,JONES,TEXAS,0
B,1,JOHN,SMITHSON,OHIO,0
`

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	roster  string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It writes a roster file, defaults common fields and applies any provided
// options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.RosterFile = filepath.Join(base, "roster.csv")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.GlobalLogFile = filepath.Join(base, "logs", "global.log")
	cfgVal.Roster.LabelFormat = "{Section}-{Site}"
	cfgVal.Roster.Columns = map[string]string{
		"first_name": "First Name",
		"surname":    "Surname",
		"category_a": "State",
	}
	cfgVal.Matching.FuzzyMatchPolicy = "accept"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		roster:  DefaultRoster,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	WriteFile(t, builder.cfg.Paths.RosterFile, builder.roster)
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithRoster replaces the roster CSV written for the test.
func WithRoster(content string) ConfigOption {
	return func(b *configBuilder) {
		b.roster = content
	}
}

// WithMatching adjusts the [matching] section.
func WithMatching(mutate func(*config.Matching)) ConfigOption {
	return func(b *configBuilder) {
		mutate(&b.cfg.Matching)
	}
}

// WithColumns replaces the slot-to-column mapping.
func WithColumns(columns map[string]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Roster.Columns = columns
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.RosterFile)
}
