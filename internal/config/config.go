package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"markerid/internal/fields"
	"markerid/internal/matching"
	"markerid/internal/vocab"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	RosterFile    string `toml:"roster_file"`
	StateDir      string `toml:"state_dir"`
	LogDir        string `toml:"log_dir"`
	GlobalLogFile string `toml:"global_log_file"`
}

// Roster describes the reference CSV layout.
type Roster struct {
	ClaimColumn string `toml:"claim_column"`
	LabelFormat string `toml:"label_format"`
	// Columns maps field slot keys (first_name, surname, ...) to CSV headers.
	// An empty header disables comparison for that slot.
	Columns map[string]string `toml:"columns"`
}

// Matching contains the decision policy knobs.
type Matching struct {
	FuzzinessThreshold    int    `toml:"fuzziness_threshold"`
	ConfirmationTolerance int    `toml:"confirmation_tolerance"`
	FuzzyMatchPolicy      string `toml:"fuzzy_match_policy"`
	UserFeedbackLevel     string `toml:"user_feedback_level"`
	CandidateLimit        int    `toml:"candidate_limit"`
}

// Vocabulary overrides the built-in category sets.
type Vocabulary struct {
	Regions         []string          `toml:"regions"`
	Conflicts       []string          `toml:"conflicts"`
	Abbreviations   map[string]string `toml:"abbreviations"`
	CacheTTLSeconds int               `toml:"cache_ttl_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for markerid.
//
// Configuration sections:
//   - Paths: roster file, state directory and log locations
//   - Roster: claim column, label format and slot-to-column mapping
//   - Matching: thresholds and escalation policy
//   - Vocabulary: category sets and abbreviations used by the classifier
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Roster     Roster     `toml:"roster"`
	Matching   Matching   `toml:"matching"`
	Vocabulary Vocabulary `toml:"vocabulary"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("markerid.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir, filepath.Dir(c.Paths.GlobalLogFile)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the artifact store location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "markerid.db")
}

// LockPath returns the session lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "markerid.lock")
}

// LogFilePath returns the structured log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "markerid.log")
}

// RosterBackupPath returns where the roster is copied before a session
// modifies it.
func (c *Config) RosterBackupPath() string {
	return filepath.Join(c.Paths.StateDir, "backup", filepath.Base(c.Paths.RosterFile))
}

// MatchingSettings converts the [matching] section for the engine.
func (c *Config) MatchingSettings() matching.Settings {
	policy, _ := matching.ParsePolicy(c.Matching.FuzzyMatchPolicy)
	level, _ := matching.ParseFeedbackLevel(c.Matching.UserFeedbackLevel)
	return matching.Settings{
		FuzzinessThreshold:    c.Matching.FuzzinessThreshold,
		ConfirmationTolerance: c.Matching.ConfirmationTolerance,
		FuzzyMatchPolicy:      policy,
		FeedbackLevel:         level,
	}
}

// ColumnMap resolves [roster.columns] into slot mappings. Slots mapped to an
// empty header are left out.
func (c *Config) ColumnMap() (matching.ColumnMap, error) {
	out := make(matching.ColumnMap, len(c.Roster.Columns))
	keys := make([]string, 0, len(c.Roster.Columns))
	for key := range c.Roster.Columns {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		slot, err := fields.ParseSlot(key)
		if err != nil {
			return nil, fmt.Errorf("roster.columns: %w", err)
		}
		column := strings.TrimSpace(c.Roster.Columns[key])
		if column == "" {
			continue
		}
		out[slot] = column
	}
	return out, nil
}

// Classifier builds the field classifier from the [vocabulary] section,
// falling back to the built-in sets for empty lists.
func (c *Config) Classifier() *fields.Classifier {
	var opts []vocab.Option
	if c.Vocabulary.CacheTTLSeconds > 0 {
		opts = append(opts, vocab.WithCacheTTL(time.Duration(c.Vocabulary.CacheTTLSeconds)*time.Second))
	}

	regions := vocab.Regions()
	if len(c.Vocabulary.Regions) > 0 {
		regions = vocab.NewSet("regions", c.Vocabulary.Regions, opts...)
	}
	conflicts := vocab.Conflicts()
	if len(c.Vocabulary.Conflicts) > 0 {
		conflicts = vocab.NewSet("conflicts", c.Vocabulary.Conflicts, opts...)
	}
	abbrev := vocab.DefaultAbbreviations()
	if c.Vocabulary.Abbreviations != nil {
		abbrev = vocab.NewAbbreviations(c.Vocabulary.Abbreviations)
	}
	return fields.NewClassifier(regions, conflicts, abbrev)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
