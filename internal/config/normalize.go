package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRoster()
	c.normalizeMatching()
	c.normalizeVocabulary()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.RosterFile) == "" {
		if value, ok := os.LookupEnv("MARKERID_ROSTER_FILE"); ok {
			c.Paths.RosterFile = strings.TrimSpace(value)
		}
	}
	if value, ok := os.LookupEnv("MARKERID_STATE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}

	var err error
	if c.Paths.RosterFile, err = expandPath(strings.TrimSpace(c.Paths.RosterFile)); err != nil {
		return fmt.Errorf("paths.roster_file: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.GlobalLogFile) == "" {
		c.Paths.GlobalLogFile = filepath.Join(c.Paths.LogDir, defaultGlobalLogName)
	}
	if c.Paths.GlobalLogFile, err = expandPath(c.Paths.GlobalLogFile); err != nil {
		return fmt.Errorf("paths.global_log_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeRoster() {
	c.Roster.ClaimColumn = strings.TrimSpace(c.Roster.ClaimColumn)
	if c.Roster.ClaimColumn == "" {
		c.Roster.ClaimColumn = Default().Roster.ClaimColumn
	}
	if strings.TrimSpace(c.Roster.LabelFormat) == "" {
		c.Roster.LabelFormat = Default().Roster.LabelFormat
	}

	columns := defaultColumns()
	for key, column := range c.Roster.Columns {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
		columns[key] = strings.TrimSpace(column)
	}
	c.Roster.Columns = columns
}

func (c *Config) normalizeMatching() {
	c.Matching.FuzzyMatchPolicy = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(c.Matching.FuzzyMatchPolicy)), "-", "_")
	if c.Matching.FuzzyMatchPolicy == "" {
		c.Matching.FuzzyMatchPolicy = Default().Matching.FuzzyMatchPolicy
	}
	c.Matching.UserFeedbackLevel = strings.ToLower(strings.TrimSpace(c.Matching.UserFeedbackLevel))
	if c.Matching.UserFeedbackLevel == "" {
		c.Matching.UserFeedbackLevel = Default().Matching.UserFeedbackLevel
	}
	if c.Matching.CandidateLimit == 0 {
		c.Matching.CandidateLimit = defaultCandidateLimit
	}
}

func (c *Config) normalizeVocabulary() {
	c.Vocabulary.Regions = trimList(c.Vocabulary.Regions)
	c.Vocabulary.Conflicts = trimList(c.Vocabulary.Conflicts)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
