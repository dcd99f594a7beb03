package workflow

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"markerid/internal/audit"
	"markerid/internal/logging"
	"markerid/internal/matching"
	"markerid/internal/queue"
	"markerid/internal/textutil"
)

const maxTokenLine = 1 << 20

// TokenRecord is one line of a token file.
type TokenRecord struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Tokens []string `json:"tokens"`
}

// ProcessOptions controls ProcessFile.
type ProcessOptions struct {
	// Resume skips every record up to and including the last artifact named
	// in the global log.
	Resume bool
}

// ProcessSummary counts what happened to each input record.
type ProcessSummary struct {
	Read      int
	Skipped   int
	Invalid   int
	Assigned  int
	Unmatched int
	Review    int
	Cascades  int
}

// ReadTokenFile parses a JSON Lines token file. Blank lines are ignored.
// A line without an id takes one derived from its source file name; malformed
// lines and lines with neither are reported by line number and skipped.
func ReadTokenFile(path string) ([]TokenRecord, []error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open token file: %w", err)
	}
	defer file.Close()

	var (
		records []TokenRecord
		invalid []error
	)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxTokenLine)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec TokenRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			invalid = append(invalid, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		rec.ID = strings.TrimSpace(rec.ID)
		if rec.ID == "" && strings.TrimSpace(rec.Source) != "" {
			base := filepath.Base(rec.Source)
			rec.ID = textutil.SanitizeToken(strings.TrimSuffix(base, filepath.Ext(base)))
		}
		if rec.ID == "" {
			invalid = append(invalid, fmt.Errorf("line %d: missing id", line))
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read token file: %w", err)
	}
	return records, invalid, nil
}

// ProcessFile classifies and assigns every record in a token file. Records
// whose artifact is already assigned or marked as error are skipped.
// Cancellation stops between records.
func (m *Manager) ProcessFile(ctx context.Context, path string, opts ProcessOptions) (ProcessSummary, error) {
	ctx = ensureContext(ctx)
	var summary ProcessSummary

	records, invalid, err := ReadTokenFile(path)
	if err != nil {
		return summary, err
	}
	summary.Invalid = len(invalid)
	for _, lineErr := range invalid {
		logging.WarnWithContext(m.logger, "token line skipped", "invalid_token_line",
			logging.Error(lineErr),
			logging.String("path", path),
			logging.String(logging.FieldImpact, "the artifact on this line was not processed"),
		)
	}

	if opts.Resume {
		records = m.resumeAfter(records)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Read++

		existing, err := m.store.Get(ctx, rec.ID)
		switch {
		case err == nil && (existing.Status == queue.StatusAssigned || existing.Status == queue.StatusError):
			summary.Skipped++
			m.logger.Debug("artifact already settled",
				logging.String(logging.FieldArtifactID, rec.ID),
				logging.String("status", string(existing.Status)),
			)
			continue
		case err != nil && !errors.Is(err, queue.ErrNotFound):
			return summary, err
		}

		res, err := m.ProcessTokens(ctx, rec)
		if err != nil {
			return summary, err
		}
		summary.count(res)
	}

	m.logger.Info("token file processed",
		logging.String("path", path),
		logging.Int("read", summary.Read),
		logging.Int("assigned", summary.Assigned),
		logging.Int("review", summary.Review),
		logging.Int("unmatched", summary.Unmatched),
		logging.Int("skipped", summary.Skipped),
		logging.Int("cascades", summary.Cascades),
	)
	return summary, nil
}

func (m *Manager) resumeAfter(records []TokenRecord) []TokenRecord {
	last, err := audit.LastArtifact(m.cfg.Paths.GlobalLogFile)
	if err != nil {
		logging.WarnWithContext(m.logger, "resume point unavailable", "resume_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "processing starts from the first record"),
		)
		return records
	}
	if last == "" {
		return records
	}
	for i, rec := range records {
		if rec.ID == last {
			m.logger.Info("resuming after last logged artifact",
				logging.String(logging.FieldArtifactID, last),
				logging.Int("skipped", i+1),
			)
			return records[i+1:]
		}
	}
	logging.WarnWithContext(m.logger, "last logged artifact not in token file", "resume_point_missing",
		logging.String(logging.FieldArtifactID, last),
		logging.String(logging.FieldImpact, "processing starts from the first record"),
	)
	return records
}

// ProcessTokens classifies one artifact, stores it and runs Assign.
func (m *Manager) ProcessTokens(ctx context.Context, rec TokenRecord) (matching.Result, error) {
	fs, ok := m.classifier.Classify(rec.Tokens)
	if _, err := m.store.Upsert(ctx, rec.ID, rec.Source, rec.Tokens, fs); err != nil {
		return matching.Result{}, err
	}
	if !ok {
		return m.rejectUnclassifiable(ctx, rec.ID)
	}
	m.events.Record(rec.ID, "classified "+describeFields(fs))
	return m.assign(ctx, matching.Artifact{ID: rec.ID, Fields: fs})
}

func (m *Manager) rejectUnclassifiable(ctx context.Context, id string) (matching.Result, error) {
	if released, ok := m.engine.Release(id, m.events); ok {
		m.dirty.Store(true)
		m.logger.Info("claim released", logging.String(logging.FieldArtifactID, id), logging.Int(logging.FieldRecordIndex, released))
	}
	outcome := matching.Rejected(matching.ReasonUnclassifiable)
	change := matching.Change{
		Artifact:    matching.Artifact{ID: id},
		Outcome:     outcome,
		Escalate:    m.engine.Settings().ShouldEscalate(matching.ReasonUnclassifiable),
		EvictedFrom: -1,
	}
	m.events.Record(id, "rejected: "+matching.ReasonUnclassifiable.Description())
	res := matching.Result{Outcome: outcome, Released: -1, Changes: []matching.Change{change}}
	return res, m.persist(ctx, res)
}

func (m *Manager) assign(ctx context.Context, a matching.Artifact) (matching.Result, error) {
	res := m.engine.Assign(a, m.events)
	m.dirty.Store(true)
	return res, m.persist(ctx, res)
}

// persist writes every change to the store in the order the engine made
// them, so a later change for the same artifact wins.
func (m *Manager) persist(ctx context.Context, res matching.Result) error {
	for _, change := range res.Changes {
		id := change.Artifact.ID
		var err error
		if change.Outcome.Assigned {
			err = m.store.ApplyAssignment(ctx, id, change.Outcome.RecordIndex, change.Outcome.Score, change.Label)
		} else {
			err = m.store.ApplyRejection(ctx, id, string(change.Outcome.Reason), change.Escalate)
		}
		if err != nil {
			logging.ErrorWithContext(logging.WithContext(logging.WithArtifactID(ctx, id), m.logger),
				"persist change failed", "persist_failed",
				logging.String("outcome", change.Outcome.String()),
				logging.Error(err),
			)
			return fmt.Errorf("persist %s: %w", id, err)
		}
		m.logChange(ctx, change)
	}
	return nil
}

func (s *ProcessSummary) count(res matching.Result) {
	for i, change := range res.Changes {
		if i > 0 {
			s.Cascades++
			continue
		}
		switch {
		case change.Outcome.Assigned:
			s.Assigned++
		case change.Escalate:
			s.Review++
		default:
			s.Unmatched++
		}
	}
}
