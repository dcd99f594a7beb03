package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldArtifactID is the standardized structured logging key for artifact identifiers.
	FieldArtifactID = "artifact_id"
	// FieldRecordIndex is the standardized structured logging key for roster record indexes.
	FieldRecordIndex = "record_index"
	// FieldLabel is the standardized structured logging key for roster record labels.
	FieldLabel = "label"
	// FieldRunID is the standardized structured logging key for session identifiers.
	FieldRunID = "run_id"
	// FieldEventType is the standardized structured logging key for event classification.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized structured logging key for remediation hints.
	FieldErrorHint = "error_hint"
	// FieldDecisionType is the standardized structured logging key for decision categories.
	FieldDecisionType = "decision_type"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const artifactIDKey contextKey = iota

// WithArtifactID returns a context carrying the artifact being processed.
func WithArtifactID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, artifactIDKey, strings.TrimSpace(id))
}

// ArtifactIDFromContext returns the artifact stored by WithArtifactID.
func ArtifactIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(artifactIDKey).(string)
	return id, ok && id != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if id, ok := ArtifactIDFromContext(ctx); ok {
		return []slog.Attr{slog.String(FieldArtifactID, id)}
	}
	return nil
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
