package workflow

import (
	"context"
	"fmt"
	"strings"

	"markerid/internal/fields"
	"markerid/internal/logging"
	"markerid/internal/matching"
)

// logChange emits one decision line per persisted change. Assignments log
// at info; rejections escalated for review log at warn.
func (m *Manager) logChange(ctx context.Context, change matching.Change) {
	logger := logging.WithContext(logging.WithArtifactID(ctx, change.Artifact.ID), m.logger)

	attrs := make([]logging.Attr, 0, 8)
	if change.Cascade {
		attrs = append(attrs,
			logging.String("evicted_from", change.EvictedLabel),
			logging.String("evicted_by", change.EvictedBy),
		)
	}

	if change.Outcome.Assigned {
		reason := fmt.Sprintf("score %g", change.Outcome.Score)
		attrs = append(attrs, logging.DecisionAttrs("match", "assigned", reason)...)
		attrs = append(attrs, logging.RecordAttrs(change.Outcome.RecordIndex, change.Label, change.Outcome.Score)...)
		msg := "artifact assigned"
		if change.Cascade {
			msg = "evicted artifact re-homed"
		}
		logger.Info(msg, logging.Args(attrs...)...)
		return
	}

	result := "unmatched"
	if change.Escalate {
		result = "review"
	}
	attrs = append(attrs, logging.DecisionAttrs("match", result, change.Outcome.Reason.Description())...)
	attrs = append(attrs, logging.String("reason", string(change.Outcome.Reason)))
	if change.Escalate {
		logging.WarnWithContext(logger, "artifact needs review", "review_queued",
			append(attrs,
				logging.String(logging.FieldImpact, "artifact waits in the review queue"),
				logging.String(logging.FieldErrorHint, "run 'markerid review list'"),
			)...,
		)
		return
	}
	logger.Info("artifact unmatched", logging.Args(attrs...)...)
}

func describeFields(fs fields.FieldSet) string {
	parts := make([]string, 0, len(fields.AllSlots))
	for _, slot := range fields.AllSlots {
		if value := fs.Get(slot); value != "" {
			parts = append(parts, slot.String()+"="+value)
		}
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, " ")
}
