package matching

import (
	"fmt"
	"strings"
)

// Policy controls how fuzzy (non-perfect) best matches are treated.
type Policy string

const (
	PolicyReject              Policy = "reject"
	PolicyRequestConfirmation Policy = "request_confirmation"
	PolicyAccept              Policy = "accept"
)

// ParsePolicy accepts the config spelling, case-insensitively, with "-" or "_".
func ParsePolicy(value string) (Policy, error) {
	switch Policy(normalizeEnum(value)) {
	case PolicyReject:
		return PolicyReject, nil
	case PolicyRequestConfirmation:
		return PolicyRequestConfirmation, nil
	case PolicyAccept:
		return PolicyAccept, nil
	}
	return "", fmt.Errorf("unknown fuzzy match policy %q", value)
}

// FeedbackLevel controls which rejections are escalated to review.
type FeedbackLevel string

const (
	FeedbackNone    FeedbackLevel = "none"
	FeedbackPartial FeedbackLevel = "partial"
	FeedbackFull    FeedbackLevel = "full"
)

// ParseFeedbackLevel accepts "none", "partial" or "full".
func ParseFeedbackLevel(value string) (FeedbackLevel, error) {
	switch FeedbackLevel(normalizeEnum(value)) {
	case FeedbackNone:
		return FeedbackNone, nil
	case FeedbackPartial:
		return FeedbackPartial, nil
	case FeedbackFull:
		return FeedbackFull, nil
	}
	return "", fmt.Errorf("unknown user feedback level %q", value)
}

func normalizeEnum(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.ReplaceAll(value, "-", "_")
}

// Reason tags a rejected outcome.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonNoMatch               Reason = "no_match"
	ReasonMultiplePerfect       Reason = "multiple_perfect"
	ReasonFuzzyTie              Reason = "fuzzy_tie"
	ReasonTooCloseToCall        Reason = "too_close_to_call"
	ReasonFuzzyRejectedByPolicy Reason = "fuzzy_rejected_by_policy"
	ReasonUnclassifiable        Reason = "unclassifiable"
)

var reasonDescriptions = map[Reason]string{
	ReasonNoMatch:               "no record scored above the threshold",
	ReasonMultiplePerfect:       "more than one record matched perfectly",
	ReasonFuzzyTie:              "the best records tied",
	ReasonTooCloseToCall:        "the best records were too close to call",
	ReasonFuzzyRejectedByPolicy: "fuzzy matches are rejected by policy",
	ReasonUnclassifiable:        "no usable tokens",
}

// Description returns a short sentence for review listings.
func (r Reason) Description() string {
	if desc, ok := reasonDescriptions[r]; ok {
		return desc
	}
	return string(r)
}

// Settings holds the decision policy configuration.
type Settings struct {
	FuzzinessThreshold    int
	ConfirmationTolerance int
	FuzzyMatchPolicy      Policy
	FeedbackLevel         FeedbackLevel
}

// DefaultSettings mirrors the defaults of the [matching] config section.
func DefaultSettings() Settings {
	return Settings{
		FuzzinessThreshold:    50,
		ConfirmationTolerance: 5,
		FuzzyMatchPolicy:      PolicyRequestConfirmation,
		FeedbackLevel:         FeedbackFull,
	}
}

// Validate checks ranges and enum values.
func (s Settings) Validate() error {
	if s.FuzzinessThreshold < 0 || s.FuzzinessThreshold > 100 {
		return fmt.Errorf("fuzziness threshold must be between 0 and 100")
	}
	if s.ConfirmationTolerance < 0 || s.ConfirmationTolerance > 100 {
		return fmt.Errorf("confirmation tolerance must be between 0 and 100")
	}
	if _, err := ParsePolicy(string(s.FuzzyMatchPolicy)); err != nil {
		return err
	}
	if _, err := ParseFeedbackLevel(string(s.FeedbackLevel)); err != nil {
		return err
	}
	return nil
}

// mandatoryReasons are escalated at every feedback level.
var mandatoryReasons = map[Reason]bool{
	ReasonMultiplePerfect:       true,
	ReasonFuzzyTie:              true,
	ReasonTooCloseToCall:        true,
	ReasonFuzzyRejectedByPolicy: true,
}

// ShouldEscalate reports whether a first-attempt rejection for reason goes to
// the review queue. Ambiguous outcomes always go; partial adds
// unclassifiable artifacts and full adds misses too. Cascade failures are
// escalated regardless.
func (s Settings) ShouldEscalate(reason Reason) bool {
	if reason == ReasonNone {
		return false
	}
	if mandatoryReasons[reason] {
		return true
	}
	switch s.FeedbackLevel {
	case FeedbackFull:
		return true
	case FeedbackPartial:
		return reason == ReasonUnclassifiable
	default:
		return false
	}
}
