package workflow

import (
	"context"

	"markerid/internal/logging"
	"markerid/internal/matching"
)

// Records returns the roster state, optionally limited to claimed records.
func (m *Manager) Records(claimedOnly bool) []matching.RecordState {
	all := m.engine.Snapshot()
	if !claimedOnly {
		return all
	}
	out := make([]matching.RecordState, 0, len(all))
	for _, rec := range all {
		if rec.Claim > 0 {
			out = append(out, rec)
		}
	}
	return out
}

// ResetClaims zeroes every claim and returns assigned artifacts to pending.
// The roster is saved when the session closes.
func (m *Manager) ResetClaims(ctx context.Context) (int, int64, error) {
	records := m.engine.ResetClaims(m.events)
	m.dirty.Store(true)
	artifacts, err := m.store.ResetAssignments(ctx)
	if err != nil {
		return records, 0, err
	}
	m.logger.Info("roster claims reset",
		logging.Int("records", records),
		logging.Int("artifacts", int(artifacts)),
	)
	return records, artifacts, nil
}
