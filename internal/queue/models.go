package queue

import (
	"errors"
	"time"

	"markerid/internal/fields"
)

// Status represents where an artifact is in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusUnmatched Status = "unmatched"
	StatusReview    Status = "review"
	StatusError     Status = "error"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{
	StatusPending,
	StatusAssigned,
	StatusUnmatched,
	StatusReview,
	StatusError,
}

// ErrNotFound is returned when an artifact does not exist or the review
// queue is empty.
var ErrNotFound = errors.New("artifact not found")

// ErrNotQueued is returned when a review operation targets an artifact that
// is not in the review queue.
var ErrNotQueued = errors.New("artifact is not in the review queue")

// Artifact is the persisted form of one scanned image.
type Artifact struct {
	ID     string
	Source string
	Tokens []string
	Fields fields.FieldSet
	Status Status

	// RecordIndex is -1 unless the artifact is assigned.
	RecordIndex int
	Score       float64
	Label       string
	Reason      string
	Note        string

	// ReviewPosition orders the review queue; zero when not queued.
	ReviewPosition int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Queued reports whether the artifact waits in the review queue.
func (a *Artifact) Queued() bool {
	return a != nil && a.ReviewPosition > 0
}

// Assigned reports whether the artifact holds a roster record.
func (a *Artifact) Assigned() bool {
	return a != nil && a.Status == StatusAssigned && a.RecordIndex >= 0
}
