package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"markerid/internal/config"
	"markerid/internal/fields"
	"markerid/internal/matching"
)

func TestLoadDefaultConfigUsesEnvRosterAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MARKERID_ROSTER_FILE", "~/roster.csv")
	t.Setenv("MARKERID_STATE_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.RosterFile != filepath.Join(tempHome, "roster.csv") {
		t.Fatalf("unexpected roster file: %q", cfg.Paths.RosterFile)
	}
	wantState := filepath.Join(tempHome, ".local", "share", "markerid")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.GlobalLogFile != filepath.Join(wantState, "logs", "global.log") {
		t.Fatalf("unexpected global log: %q", cfg.Paths.GlobalLogFile)
	}
	if cfg.DatabasePath() != filepath.Join(wantState, "markerid.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}

	settings := cfg.MatchingSettings()
	if settings != matching.DefaultSettings() {
		t.Fatalf("unexpected matching settings: %+v", settings)
	}
	if cfg.Matching.CandidateLimit != 5 {
		t.Fatalf("unexpected candidate limit: %d", cfg.Matching.CandidateLimit)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}

	columns, err := cfg.ColumnMap()
	if err != nil {
		t.Fatalf("ColumnMap: %v", err)
	}
	if columns[fields.SlotSurname] != "Surname" || columns[fields.SlotCategoryB] != "Conflict" {
		t.Fatalf("unexpected default columns: %v", columns)
	}
}

func TestLoadMissingRosterFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MARKERID_ROSTER_FILE", "")
	t.Chdir(t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil || !strings.Contains(err.Error(), "paths.roster_file") {
		t.Fatalf("expected roster_file error, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MARKERID_STATE_DIR", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "markerid.toml")

	type file struct {
		Paths struct {
			RosterFile string `toml:"roster_file"`
			StateDir   string `toml:"state_dir"`
		} `toml:"paths"`
		Roster struct {
			LabelFormat string            `toml:"label_format"`
			Columns     map[string]string `toml:"columns"`
		} `toml:"roster"`
		Matching struct {
			FuzzyMatchPolicy  string `toml:"fuzzy_match_policy"`
			UserFeedbackLevel string `toml:"user_feedback_level"`
		} `toml:"matching"`
		Vocabulary struct {
			Regions []string `toml:"regions"`
		} `toml:"vocabulary"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	var content file
	content.Paths.RosterFile = filepath.Join(dir, "roster.csv")
	content.Paths.StateDir = filepath.Join(dir, "state")
	content.Roster.LabelFormat = "{Row}/{Plot}"
	content.Roster.Columns = map[string]string{"category-a": "Region", "middle_name": ""}
	content.Matching.FuzzyMatchPolicy = "Accept"
	content.Matching.UserFeedbackLevel = "partial"
	content.Vocabulary.Regions = []string{" Avalon ", "", "Lyonesse"}
	content.Logging.Format = "JSON"

	data, err := toml.Marshal(content)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Paths.StateDir != filepath.Join(dir, "state") {
		t.Fatalf("state dir = %q", cfg.Paths.StateDir)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format = %q", cfg.Logging.Format)
	}
	settings := cfg.MatchingSettings()
	if settings.FuzzyMatchPolicy != matching.PolicyAccept || settings.FeedbackLevel != matching.FeedbackPartial {
		t.Fatalf("settings = %+v", settings)
	}
	if len(cfg.Vocabulary.Regions) != 2 {
		t.Fatalf("regions = %v", cfg.Vocabulary.Regions)
	}

	columns, err := cfg.ColumnMap()
	if err != nil {
		t.Fatalf("ColumnMap: %v", err)
	}
	if columns[fields.SlotCategoryA] != "Region" {
		t.Fatalf("category_a column = %q", columns[fields.SlotCategoryA])
	}
	if _, ok := columns[fields.SlotMiddleName]; ok {
		t.Fatal("blank column should disable the slot")
	}
	if columns[fields.SlotSurname] != "Surname" {
		t.Fatal("unset slots should keep their defaults")
	}

	classifier := cfg.Classifier()
	got, ok := classifier.Classify([]string{"ARTHUR", "PENDRAGON", "AVALON"})
	if !ok || got.CategoryA != "AVALON" {
		t.Fatalf("custom regions not used: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Paths.RosterFile = "/tmp/roster.csv"
		cfg.Roster.Columns = map[string]string{"surname": "Surname"}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"threshold range", func(c *config.Config) { c.Matching.FuzzinessThreshold = 101 }, "matching.fuzziness_threshold"},
		{"tolerance range", func(c *config.Config) { c.Matching.ConfirmationTolerance = -1 }, "matching.confirmation_tolerance"},
		{"policy", func(c *config.Config) { c.Matching.FuzzyMatchPolicy = "sometimes" }, "matching.fuzzy_match_policy"},
		{"feedback", func(c *config.Config) { c.Matching.UserFeedbackLevel = "loud" }, "matching.user_feedback_level"},
		{"label braces", func(c *config.Config) { c.Roster.LabelFormat = "{Section" }, "roster.label_format"},
		{"unknown slot", func(c *config.Config) { c.Roster.Columns["plot"] = "Plot" }, "roster.columns"},
		{"claim column mapped", func(c *config.Config) { c.Roster.Columns["surname"] = "Fuzziness" }, "claim column"},
		{"nothing mapped", func(c *config.Config) { c.Roster.Columns = map[string]string{"surname": ""} }, "at least one"},
		{"cache ttl", func(c *config.Config) { c.Vocabulary.CacheTTLSeconds = -5 }, "vocabulary.cache_ttl_seconds"},
		{"log level", func(c *config.Config) { c.Logging.Level = "chatty" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists || cfg.Roster.LabelFormat != "{Section}-{Site}" {
		t.Fatalf("unexpected sample config: %+v", cfg.Roster)
	}
}
