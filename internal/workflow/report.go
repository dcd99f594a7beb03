package workflow

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"markerid/internal/fields"
	"markerid/internal/queue"
	"markerid/internal/textutil"
)

// Report summarizes the session state for export.
type Report struct {
	GeneratedAt time.Time          `yaml:"generated_at"`
	RunID       string             `yaml:"run_id"`
	Roster      string             `yaml:"roster"`
	Counts      map[string]int     `yaml:"counts"`
	Assignments []ReportAssignment `yaml:"assignments"`
	Review      []ReportReview     `yaml:"review"`
}

// ReportAssignment is one assigned artifact.
type ReportAssignment struct {
	Artifact    string  `yaml:"artifact"`
	Source      string  `yaml:"source,omitempty"`
	RecordIndex int     `yaml:"record_index"`
	Label       string  `yaml:"label"`
	Score       float64 `yaml:"score"`
	// File is the name the artifact's image takes once filed under its label.
	File string `yaml:"file,omitempty"`
}

// ReportReview is one entry of the review backlog, in queue order.
type ReportReview struct {
	Artifact string          `yaml:"artifact"`
	Source   string          `yaml:"source,omitempty"`
	Reason   string          `yaml:"reason"`
	Fields   fields.FieldSet `yaml:"fields"`
}

// BuildReport collects counts, assignments and the review backlog.
func (m *Manager) BuildReport(ctx context.Context) (*Report, error) {
	counts, err := m.store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	assigned, err := m.store.List(ctx, queue.StatusAssigned)
	if err != nil {
		return nil, err
	}
	backlog, err := m.store.ReviewQueue(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		RunID:       m.runID,
		Roster:      m.cfg.Paths.RosterFile,
		Counts:      make(map[string]int, len(counts)),
		Assignments: make([]ReportAssignment, 0, len(assigned)),
		Review:      make([]ReportReview, 0, len(backlog)),
	}
	for status, count := range counts {
		report.Counts[string(status)] = count
	}
	for _, a := range assigned {
		report.Assignments = append(report.Assignments, ReportAssignment{
			Artifact:    a.ID,
			Source:      a.Source,
			RecordIndex: a.RecordIndex,
			Label:       a.Label,
			Score:       a.Score,
			File:        textutil.LabelFileName(a.Label, filepath.Ext(a.Source)),
		})
	}
	for _, a := range backlog {
		report.Review = append(report.Review, ReportReview{
			Artifact: a.ID,
			Source:   a.Source,
			Reason:   a.Reason,
			Fields:   a.Fields,
		})
	}
	return report, nil
}

// WriteReport encodes report as YAML.
func WriteReport(w io.Writer, report *Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return encoder.Close()
}
