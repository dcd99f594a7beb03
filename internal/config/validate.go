package config

import (
	"errors"
	"fmt"
	"strings"

	"markerid/internal/fields"
	"markerid/internal/matching"
	"markerid/internal/roster"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRoster(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateVocabulary(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.RosterFile) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("paths.roster_file is required. Set MARKERID_ROSTER_FILE env var or edit %s (create with 'markerid config init')", defaultPath)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateRoster() error {
	if _, err := roster.ParseTemplate(c.Roster.LabelFormat); err != nil {
		return fmt.Errorf("roster.label_format: %w", err)
	}
	mapped := 0
	for key, column := range c.Roster.Columns {
		if _, err := fields.ParseSlot(key); err != nil {
			return fmt.Errorf("roster.columns: %w", err)
		}
		if column == c.Roster.ClaimColumn {
			return fmt.Errorf("roster.columns.%s must not name the claim column %q", key, column)
		}
		if column != "" {
			mapped++
		}
	}
	if mapped == 0 {
		return errors.New("roster.columns must map at least one field")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if err := ensureRange(map[string]int{
		"matching.fuzziness_threshold":    c.Matching.FuzzinessThreshold,
		"matching.confirmation_tolerance": c.Matching.ConfirmationTolerance,
	}, 0, 100); err != nil {
		return err
	}
	if _, err := matching.ParsePolicy(c.Matching.FuzzyMatchPolicy); err != nil {
		return fmt.Errorf("matching.fuzzy_match_policy must be reject, request_confirmation or accept (got %q)", c.Matching.FuzzyMatchPolicy)
	}
	if _, err := matching.ParseFeedbackLevel(c.Matching.UserFeedbackLevel); err != nil {
		return fmt.Errorf("matching.user_feedback_level must be none, partial or full (got %q)", c.Matching.UserFeedbackLevel)
	}
	if c.Matching.CandidateLimit < 0 {
		return errors.New("matching.candidate_limit must be positive")
	}
	return nil
}

func (c *Config) validateVocabulary() error {
	if c.Vocabulary.CacheTTLSeconds < 0 {
		return errors.New("vocabulary.cache_ttl_seconds must be zero or positive")
	}
	for long, short := range c.Vocabulary.Abbreviations {
		if strings.TrimSpace(long) == "" || strings.TrimSpace(short) == "" {
			return errors.New("vocabulary.abbreviations entries must have a non-empty key and value")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("logging.level must be debug, info, warn or error (got %q)", c.Logging.Level)
}

func ensureRange(values map[string]int, lo, hi int) error {
	for key, value := range values {
		if value < lo || value > hi {
			return fmt.Errorf("%s must be between %d and %d", key, lo, hi)
		}
	}
	return nil
}
