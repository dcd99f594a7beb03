package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"markerid/internal/audit"
	"markerid/internal/fields"
	"markerid/internal/logging"
	"markerid/internal/matching"
	"markerid/internal/queue"
)

// Detail is everything a reviewer sees for one artifact.
type Detail struct {
	Artifact   *queue.Artifact
	Events     []audit.Event
	Candidates []matching.Candidate
}

// ReviewQueue lists escalated artifacts from front to back.
func (m *Manager) ReviewQueue(ctx context.Context) ([]*queue.Artifact, error) {
	return m.store.ReviewQueue(ctx)
}

// Show returns an artifact with its trail and the best candidates for its
// current fields.
func (m *Manager) Show(ctx context.Context, id string) (*Detail, error) {
	artifact, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := m.store.Events(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Artifact:   artifact,
		Events:     events,
		Candidates: m.engine.Candidates(artifact.Fields, m.cfg.Matching.CandidateLimit),
	}, nil
}

// ShowNext returns the detail of the artifact at the front of the review
// queue, leaving it queued.
func (m *Manager) ShowNext(ctx context.Context) (*Detail, error) {
	front, err := m.store.PeekReview(ctx)
	if err != nil {
		return nil, err
	}
	return m.Show(ctx, front.ID)
}

// Confirm assigns an artifact to recordIndex at score 100. The record's
// previous holder is evicted and re-matched.
func (m *Manager) Confirm(ctx context.Context, id string, recordIndex int) (matching.Result, error) {
	artifact, err := m.store.Get(ctx, id)
	if err != nil {
		return matching.Result{}, err
	}
	res, err := m.engine.Confirm(matching.Artifact{ID: artifact.ID, Fields: artifact.Fields}, recordIndex, m.events)
	if err != nil {
		return matching.Result{}, err
	}
	m.dirty.Store(true)
	m.logger.Info("match confirmed",
		logging.String(logging.FieldArtifactID, id),
		logging.Int(logging.FieldRecordIndex, recordIndex),
		logging.String(logging.FieldLabel, res.Label),
	)
	return res, m.persist(ctx, res)
}

// Skip moves a queued artifact to the back of the review queue.
func (m *Manager) Skip(ctx context.Context, id string) error {
	if err := m.store.Skip(ctx, id); err != nil {
		return err
	}
	m.events.Record(id, "skipped by reviewer")
	m.logger.Info("review skipped", logging.String(logging.FieldArtifactID, id))
	return nil
}

// MarkError takes an artifact out of review with status error. Any record
// it holds is released.
func (m *Manager) MarkError(ctx context.Context, id, note string) error {
	if _, err := m.store.Get(ctx, id); err != nil {
		return err
	}
	if _, ok := m.engine.Release(id, m.events); ok {
		m.dirty.Store(true)
	}
	note = strings.TrimSpace(note)
	if err := m.store.MarkError(ctx, id, note); err != nil {
		return err
	}
	msg := "marked as error by reviewer"
	if note != "" {
		msg += ": " + note
	}
	m.events.Record(id, msg)
	m.logger.Info("artifact marked as error",
		logging.String(logging.FieldArtifactID, id),
		logging.String("note", note),
	)
	return nil
}

// Edit overrides fields of an artifact and searches again. The artifact's
// current record, if any, is released first.
func (m *Manager) Edit(ctx context.Context, id string, overrides map[fields.Slot]string) (matching.Result, error) {
	if len(overrides) == 0 {
		return matching.Result{}, errors.New("no field overrides given")
	}
	artifact, err := m.store.Get(ctx, id)
	if err != nil {
		return matching.Result{}, err
	}
	fs := artifact.Fields
	for _, slot := range fields.AllSlots {
		if value, ok := overrides[slot]; ok {
			fs.Set(slot, value)
		}
	}
	if err := m.store.SetFields(ctx, id, fs); err != nil {
		return matching.Result{}, err
	}
	m.events.Record(id, "fields edited: "+describeFields(fs))
	return m.assign(ctx, matching.Artifact{ID: id, Fields: fs})
}

// Retry takes the artifact at the front of the review queue and searches
// again with the current roster state.
func (m *Manager) Retry(ctx context.Context) (*queue.Artifact, matching.Result, error) {
	artifact, err := m.store.NextReview(ctx)
	if err != nil {
		return nil, matching.Result{}, err
	}
	m.events.Record(artifact.ID, "retried from review queue")
	res, err := m.assign(ctx, matching.Artifact{ID: artifact.ID, Fields: artifact.Fields})
	return artifact, res, err
}

// ParseOverrides parses slot=value pairs. Slot keys accept the same
// spellings as the [roster.columns] config keys.
func ParseOverrides(pairs []string) (map[fields.Slot]string, error) {
	out := make(map[fields.Slot]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid override %q: expected slot=value", pair)
		}
		slot, err := fields.ParseSlot(key)
		if err != nil {
			return nil, err
		}
		out[slot] = strings.ToUpper(strings.TrimSpace(value))
	}
	return out, nil
}
