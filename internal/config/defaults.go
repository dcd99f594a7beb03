package config

import (
	"markerid/internal/matching"
	"markerid/internal/roster"
)

const (
	defaultConfigPath            = "~/.config/markerid/config.toml"
	defaultStateDir              = "~/.local/share/markerid"
	defaultLogDir                = "~/.local/share/markerid/logs"
	defaultGlobalLogName         = "global.log"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultFuzzinessThreshold    = 50
	defaultConfirmationTolerance = 5
	defaultCandidateLimit        = 5
	defaultCacheTTLSeconds       = 0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Roster: Roster{
			ClaimColumn: roster.DefaultClaimColumn,
			LabelFormat: roster.DefaultLabelFormat,
		},
		Matching: Matching{
			FuzzinessThreshold:    defaultFuzzinessThreshold,
			ConfirmationTolerance: defaultConfirmationTolerance,
			FuzzyMatchPolicy:      string(matching.PolicyRequestConfirmation),
			UserFeedbackLevel:     string(matching.FeedbackFull),
			CandidateLimit:        defaultCandidateLimit,
		},
		Vocabulary: Vocabulary{
			CacheTTLSeconds: defaultCacheTTLSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// defaultColumns returns the slot-key form of matching.DefaultColumns.
func defaultColumns() map[string]string {
	out := make(map[string]string)
	for slot, column := range matching.DefaultColumns() {
		out[slot.String()] = column
	}
	return out
}
