package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const nextPosition = "(SELECT COALESCE(MAX(review_position), 0) + 1 FROM artifacts)"

// Enqueue escalates an artifact for review. Artifacts already queued keep
// their place; others join the back.
func (s *Store) Enqueue(ctx context.Context, id, reason string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE artifacts SET status = ?, record_index = NULL, score = 0, label = NULL,
		   reason = ?, review_position = COALESCE(review_position, `+nextPosition+`), updated_at = ?
		 WHERE id = ?`,
		StatusReview, nullableString(reason), s.timestamp(), id,
	)
	return requireAffected(res, err, id, "enqueue")
}

// ReviewQueue returns the queued artifacts from front to back.
func (s *Store) ReviewQueue(ctx context.Context) ([]*Artifact, error) {
	return s.queryArtifacts(ctx,
		"SELECT "+artifactColumns+" FROM artifacts WHERE review_position IS NOT NULL ORDER BY review_position")
}

// PeekReview returns the front of the review queue without removing it.
// It returns ErrNotFound when the queue is empty.
func (s *Store) PeekReview(ctx context.Context) (*Artifact, error) {
	queue, err := s.ReviewQueue(ctx)
	if err != nil {
		return nil, err
	}
	if len(queue) == 0 {
		return nil, fmt.Errorf("%w: review queue is empty", ErrNotFound)
	}
	return queue[0], nil
}

// NextReview removes the front of the review queue and returns it as
// pending, ready to be matched again.
func (s *Store) NextReview(ctx context.Context) (*Artifact, error) {
	ctx = ensureContext(ctx)
	var artifact *Artifact
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT "+artifactColumns+" FROM artifacts WHERE review_position IS NOT NULL ORDER BY review_position LIMIT 1")
		var scanErr error
		artifact, scanErr = scanArtifact(row)
		if scanErr != nil {
			return scanErr
		}
		_, execErr := tx.ExecContext(ctx,
			"UPDATE artifacts SET status = ?, review_position = NULL, updated_at = ? WHERE id = ?",
			StatusPending, s.timestamp(), artifact.ID)
		return execErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: review queue is empty", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("next review: %w", err)
	}
	artifact.Status = StatusPending
	artifact.ReviewPosition = 0
	return artifact, nil
}

// Skip moves a queued artifact to the back of the review queue.
func (s *Store) Skip(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE artifacts SET review_position = "+nextPosition+", updated_at = ? WHERE id = ? AND review_position IS NOT NULL",
		s.timestamp(), id,
	)
	if err := requireAffected(res, err, id, "skip"); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: %s", ErrNotQueued, id)
	}
	return nil
}
