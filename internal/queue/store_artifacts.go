package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"markerid/internal/fields"
)

// Upsert records an artifact's source, tokens and fields. New artifacts
// start as pending; existing ones keep their status and match state.
func (s *Store) Upsert(ctx context.Context, id, source string, tokens []string, fs fields.FieldSet) (*Artifact, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("artifact id is required")
	}
	tokensJSON, err := encodeTokens(tokens)
	if err != nil {
		return nil, err
	}
	fieldsJSON, err := encodeFields(fs)
	if err != nil {
		return nil, err
	}
	now := s.timestamp()
	if err := s.execWithoutResultRetry(ctx,
		`INSERT INTO artifacts (id, source, tokens_json, fields_json, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   source = excluded.source,
		   tokens_json = excluded.tokens_json,
		   fields_json = excluded.fields_json,
		   updated_at = excluded.updated_at`,
		id, nullableString(source), tokensJSON, fieldsJSON, StatusPending, now, now,
	); err != nil {
		return nil, fmt.Errorf("upsert artifact %s: %w", id, err)
	}
	return s.Get(ctx, id)
}

// Get fetches one artifact.
func (s *Store) Get(ctx context.Context, id string) (*Artifact, error) {
	var artifact *Artifact
	err := s.queryRowWithRetry(ctx, func(row *sql.Row) error {
		var scanErr error
		artifact, scanErr = scanArtifact(row)
		return scanErr
	}, "SELECT "+artifactColumns+" FROM artifacts WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact %s: %w", id, err)
	}
	return artifact, nil
}

// List returns artifacts in insertion order, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Artifact, error) {
	query := "SELECT " + artifactColumns + " FROM artifacts"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN (" + makePlaceholders(len(statuses)) + ")"
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += " ORDER BY created_at, id"
	return s.queryArtifacts(ctx, query, args...)
}

func (s *Store) queryArtifacts(ctx context.Context, query string, args ...any) ([]*Artifact, error) {
	ctx = ensureContext(ctx)
	var artifacts []*Artifact
	err := retryOnBusy(ctx, func() error {
		artifacts = artifacts[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			artifact, err := scanArtifact(rows)
			if err != nil {
				return err
			}
			artifacts = append(artifacts, artifact)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return artifacts, nil
}

// SetFields replaces an artifact's classified fields.
func (s *Store) SetFields(ctx context.Context, id string, fs fields.FieldSet) error {
	fieldsJSON, err := encodeFields(fs)
	if err != nil {
		return err
	}
	res, err := s.execWithRetry(ctx,
		"UPDATE artifacts SET fields_json = ?, updated_at = ? WHERE id = ?",
		fieldsJSON, s.timestamp(), id,
	)
	return requireAffected(res, err, id, "set fields")
}

// ApplyAssignment marks an artifact as holding recordIndex and removes it
// from the review queue.
func (s *Store) ApplyAssignment(ctx context.Context, id string, recordIndex int, score float64, label string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE artifacts SET status = ?, record_index = ?, score = ?, label = ?,
		   reason = NULL, note = NULL, review_position = NULL, updated_at = ?
		 WHERE id = ?`,
		StatusAssigned, recordIndex, score, nullableString(label), s.timestamp(), id,
	)
	return requireAffected(res, err, id, "apply assignment")
}

// ApplyRejection records a rejection. Escalated rejections join the back of
// the review queue; the rest become unmatched.
func (s *Store) ApplyRejection(ctx context.Context, id, reason string, escalate bool) error {
	if escalate {
		return s.Enqueue(ctx, id, reason)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE artifacts SET status = ?, record_index = NULL, score = 0, label = NULL,
		   reason = ?, review_position = NULL, updated_at = ?
		 WHERE id = ?`,
		StatusUnmatched, nullableString(reason), s.timestamp(), id,
	)
	return requireAffected(res, err, id, "apply rejection")
}

// MarkError takes an artifact out of the review queue with status error.
func (s *Store) MarkError(ctx context.Context, id, note string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE artifacts SET status = ?, record_index = NULL, score = 0, label = NULL,
		   note = ?, review_position = NULL, updated_at = ?
		 WHERE id = ?`,
		StatusError, nullableString(note), s.timestamp(), id,
	)
	return requireAffected(res, err, id, "mark error")
}

// MarkPending clears an artifact's match state so it is matched again.
func (s *Store) MarkPending(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE artifacts SET status = ?, record_index = NULL, score = 0, label = NULL,
		   reason = NULL, review_position = NULL, updated_at = ?
		 WHERE id = ?`,
		StatusPending, s.timestamp(), id,
	)
	return requireAffected(res, err, id, "mark pending")
}

// ResetAssignments returns every assigned artifact to pending.
func (s *Store) ResetAssignments(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE artifacts SET status = ?, record_index = NULL, score = 0, label = NULL, updated_at = ?
		 WHERE status = ?`,
		StatusPending, s.timestamp(), StatusAssigned,
	)
	if err != nil {
		return 0, fmt.Errorf("reset assignments: %w", err)
	}
	return res.RowsAffected()
}

// Counts returns the number of artifacts per status. Every status is present
// in the result.
func (s *Store) Counts(ctx context.Context) (map[Status]int, error) {
	ctx = ensureContext(ctx)
	counts := make(map[Status]int, len(AllStatuses))
	err := retryOnBusy(ctx, func() error {
		for _, status := range AllStatuses {
			counts[status] = 0
		}
		rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM artifacts GROUP BY status")
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				status string
				count  int
			)
			if err := rows.Scan(&status, &count); err != nil {
				return err
			}
			counts[Status(status)] = count
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("count artifacts: %w", err)
	}
	return counts, nil
}

func requireAffected(res sql.Result, err error, id, op string) error {
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
