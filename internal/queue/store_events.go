package queue

import (
	"context"
	"database/sql"
	"fmt"

	"markerid/internal/audit"
)

// AppendEvents stores events in one transaction.
func (s *Store) AppendEvents(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO events (artifact_id, run_id, message, created_at) VALUES (?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, event := range events {
			at := event.At
			if at.IsZero() {
				at = s.now()
			}
			if _, err := stmt.ExecContext(ctx,
				event.ArtifactID, nullableString(event.RunID), event.Message, at.UTC().Format(timeLayout),
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	return nil
}

// Events returns an artifact's trail, oldest first.
func (s *Store) Events(ctx context.Context, artifactID string) ([]audit.Event, error) {
	ctx = ensureContext(ctx)
	var events []audit.Event
	err := retryOnBusy(ctx, func() error {
		events = events[:0]
		rows, err := s.db.QueryContext(ctx,
			"SELECT artifact_id, run_id, message, created_at FROM events WHERE artifact_id = ? ORDER BY id",
			artifactID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				event      audit.Event
				runID      sql.NullString
				createdRaw string
			)
			if err := rows.Scan(&event.ArtifactID, &runID, &event.Message, &createdRaw); err != nil {
				return err
			}
			event.RunID = runID.String
			if at, err := parseTimeString(createdRaw); err == nil {
				event.At = at
			}
			events = append(events, event)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", artifactID, err)
	}
	return events, nil
}
