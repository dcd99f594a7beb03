package matching

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"

	"markerid/internal/audit"
	"markerid/internal/fields"
	"markerid/internal/roster"
	"markerid/internal/textutil"
)

var (
	// ErrUnknownRecord reports a record index outside the roster.
	ErrUnknownRecord = errors.New("unknown roster record")
	// ErrUnclaimed reports an attempt to restore a holder on a record whose
	// claim is 0.
	ErrUnclaimed = errors.New("record has no claim")
	// ErrHeld reports an attempt to restore a holder on a record that another
	// artifact already holds.
	ErrHeld = errors.New("record already held")
)

// Artifact is the engine's view of one subject: an identifier and its fields.
type Artifact struct {
	ID     string
	Fields fields.FieldSet
}

// Change describes what one artifact ended up with during a call. Callers
// persist Changes after the call returns.
type Change struct {
	Artifact Artifact
	Outcome  Outcome
	// Label is the assigned record's label, empty when rejected.
	Label string
	// Escalate is set for rejections that belong on the review queue.
	Escalate bool
	// Cascade marks an artifact evicted during this call.
	Cascade      bool
	EvictedFrom  int
	EvictedLabel string
	EvictedBy    string
}

// Result is the outcome of a top-level call. Changes[0] always describes the
// artifact the call was made for; later entries are cascade re-matches in
// the order they ran.
type Result struct {
	Outcome Outcome
	Label   string
	// Released is the record the artifact gave up before matching, or -1.
	Released int
	Changes  []Change
}

// Candidate is one scored record, used for review listings.
type Candidate struct {
	Index    int
	Label    string
	Score    float64
	Raw      float64
	Claim    float64
	Holder   string
	Distance int
}

// RecordState is a read-only view of one roster record.
type RecordState struct {
	Index  int
	Label  string
	Claim  float64
	Holder string
}

type work struct {
	artifact     Artifact
	cascade      bool
	evictedFrom  int
	evictedLabel string
	evictedBy    string
}

// Engine owns the roster and every claim on it.
type Engine struct {
	mu       sync.Mutex
	roster   *roster.Roster
	columns  ColumnMap
	label    *roster.Template
	settings Settings
	holders  map[int]Artifact
	held     map[string]int
}

// NewEngine takes ownership of r. columns defaults to DefaultColumns and is
// restricted to the roster's header. A nil label names records by index.
func NewEngine(r *roster.Roster, label *roster.Template, settings Settings, columns ColumnMap) (*Engine, error) {
	if r == nil {
		return nil, errors.New("roster is required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if columns == nil {
		columns = DefaultColumns()
	}
	columns = columns.Restrict(r)
	if len(columns) == 0 {
		return nil, errors.New("no roster column maps to a field slot")
	}
	return &Engine{
		roster:   r,
		columns:  columns,
		label:    label,
		settings: settings,
		holders:  make(map[int]Artifact),
		held:     make(map[string]int),
	}, nil
}

// Settings returns the decision policy configuration.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Columns returns the active slot-to-column mapping.
func (e *Engine) Columns() ColumnMap {
	out := make(ColumnMap, len(e.columns))
	for slot, col := range e.columns {
		out[slot] = col
	}
	return out
}

// Restore records a as the holder of recordIndex without scoring, used to
// rebuild state from a previous session.
func (e *Engine) Restore(a Artifact, recordIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.roster.Record(recordIndex)
	if rec == nil {
		return fmt.Errorf("%w: %d", ErrUnknownRecord, recordIndex)
	}
	if rec.Claim == 0 {
		return fmt.Errorf("%w: %s", ErrUnclaimed, e.labelLocked(recordIndex))
	}
	if holder, ok := e.holders[recordIndex]; ok && holder.ID != a.ID {
		return fmt.Errorf("%w: %s by %s", ErrHeld, e.labelLocked(recordIndex), holder.ID)
	}
	if prev, ok := e.held[a.ID]; ok && prev != recordIndex {
		delete(e.holders, prev)
	}
	e.holders[recordIndex] = a
	e.held[a.ID] = recordIndex
	return nil
}

// Assign scores a against the roster and commits the decision, draining any
// cascade it triggers. A record already held by a is released first.
func (e *Engine) Assign(a Artifact, sink audit.Sink) Result {
	if sink == nil {
		sink = audit.Discard
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	res := Result{Released: -1}
	if idx, ok := e.held[a.ID]; ok {
		e.releaseLocked(a.ID, idx, sink)
		res.Released = idx
	}
	res.Changes = e.drainLocked([]work{{artifact: a, evictedFrom: -1}}, sink)
	res.Outcome = res.Changes[0].Outcome
	res.Label = res.Changes[0].Label
	return res
}

// Confirm commits a to recordIndex at score 100 regardless of scoring. Any
// other holder of the record is evicted and re-matched.
func (e *Engine) Confirm(a Artifact, recordIndex int, sink audit.Sink) (Result, error) {
	if sink == nil {
		sink = audit.Discard
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.roster.Record(recordIndex) == nil {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownRecord, recordIndex)
	}
	res := Result{Released: -1}
	if idx, ok := e.held[a.ID]; ok && idx != recordIndex {
		e.releaseLocked(a.ID, idx, sink)
		res.Released = idx
	}

	sink.Record(a.ID, "match confirmed by reviewer")
	outcome, evicted := e.commitLocked(a, recordIndex, 100, true, sink)
	primary := Change{
		Artifact:    a,
		Outcome:     outcome,
		Label:       e.labelLocked(recordIndex),
		EvictedFrom: -1,
	}
	res.Changes = []Change{primary}
	if evicted != nil {
		res.Changes = append(res.Changes, e.drainLocked([]work{*evicted}, sink)...)
	}
	res.Outcome = outcome
	res.Label = primary.Label
	return res, nil
}

// Release gives up the record held by artifactID and resets its claim to 0.
func (e *Engine) Release(artifactID string, sink audit.Sink) (int, bool) {
	if sink == nil {
		sink = audit.Discard
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, ok := e.held[artifactID]
	if !ok {
		return -1, false
	}
	e.releaseLocked(artifactID, idx, sink)
	return idx, true
}

// ResetClaims zeroes every claim and forgets all holders. It returns the
// number of records that had a claim.
func (e *Engine) ResetClaims(sink audit.Sink) int {
	if sink == nil {
		sink = audit.Discard
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, rec := range e.roster.Records() {
		if rec.Claim != 0 {
			count++
		}
		rec.Claim = 0
	}
	for id := range e.held {
		sink.Record(id, "claim cleared by roster reset")
	}
	e.holders = make(map[int]Artifact)
	e.held = make(map[string]int)
	return count
}

// Candidates ranks the roster for fs and returns at most limit entries. A
// limit of 0 or less returns every comparable record.
func (e *Engine) Candidates(fs fields.FieldSet, limit int) []Candidate {
	e.mu.Lock()
	defer e.mu.Unlock()

	ranked := e.rankLocked(fs)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		c := &ranked[i]
		rec := e.roster.Record(c.Index)
		c.Label = e.labelLocked(c.Index)
		c.Claim = rec.Claim
		if holder, ok := e.holders[c.Index]; ok {
			c.Holder = holder.ID
		}
		left, right := comparisonText(e.columns.comparable(fs, rec))
		c.Distance = textutil.EditDistance(left, right)
	}
	return ranked
}

// Snapshot returns the state of every record in index order.
func (e *Engine) Snapshot() []RecordState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]RecordState, 0, e.roster.Len())
	for _, rec := range e.roster.Records() {
		state := RecordState{Index: rec.Index, Label: e.labelLocked(rec.Index), Claim: rec.Claim}
		if holder, ok := e.holders[rec.Index]; ok {
			state.Holder = holder.ID
		}
		out = append(out, state)
	}
	return out
}

// HeldBy returns the record held by artifactID.
func (e *Engine) HeldBy(artifactID string) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.held[artifactID]
	return idx, ok
}

// Label renders the label of the record at index.
func (e *Engine) Label(index int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.labelLocked(index)
}

// Export serializes the roster, claims included, as CSV.
func (e *Engine) Export() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var buf bytes.Buffer
	if err := e.roster.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Engine) drainLocked(queue []work, sink audit.Sink) []Change {
	var changes []Change
	for len(queue) > 0 {
		w := queue[0]
		queue = queue[1:]

		outcome, evicted := e.matchLocked(w.artifact, sink)
		change := Change{
			Artifact:     w.artifact,
			Outcome:      outcome,
			Cascade:      w.cascade,
			EvictedFrom:  w.evictedFrom,
			EvictedLabel: w.evictedLabel,
			EvictedBy:    w.evictedBy,
		}
		if outcome.Assigned {
			change.Label = e.labelLocked(outcome.RecordIndex)
		} else {
			change.Escalate = w.cascade || e.settings.ShouldEscalate(outcome.Reason)
			sink.Record(w.artifact.ID, "rejected: "+outcome.Reason.Description())
		}
		changes = append(changes, change)
		if evicted != nil {
			queue = append(queue, *evicted)
		}
	}
	return changes
}

func (e *Engine) matchLocked(a Artifact, sink audit.Sink) (Outcome, *work) {
	ranked := e.rankLocked(a.Fields)
	if len(ranked) == 0 {
		return Decide(0, 0, false, e.settings), nil
	}
	best := ranked[0].Score
	second := 0.0
	if len(ranked) > 1 {
		second = ranked[1].Score
	}
	outcome := Decide(best, second, true, e.settings)
	if !outcome.Assigned {
		return outcome, nil
	}
	return e.commitLocked(a, ranked[0].Index, outcome.Score, false, sink)
}

// commitLocked claims record idx for a at score. It returns the evicted
// holder, if any, as a cascade work item.
func (e *Engine) commitLocked(a Artifact, idx int, score float64, manual bool, sink audit.Sink) (Outcome, *work) {
	rec := e.roster.Record(idx)
	label := e.labelLocked(idx)
	old := rec.Claim
	holder, held := e.holders[idx]
	if held && holder.ID == a.ID {
		held = false
	}

	if !manual && held && old == score {
		sink.Record(a.ID, fmt.Sprintf("tied with %s for %s at %g", holder.ID, label, score))
		if score == 100 {
			return Rejected(ReasonMultiplePerfect), nil
		}
		return Rejected(ReasonFuzzyTie), nil
	}

	var evicted *work
	if held && (manual || (old > 0 && old < score)) {
		delete(e.held, holder.ID)
		evicted = &work{
			artifact:     holder,
			cascade:      true,
			evictedFrom:  idx,
			evictedLabel: label,
			evictedBy:    a.ID,
		}
		sink.Record(holder.ID, fmt.Sprintf("evicted from %s by %s (%g over %g)", label, a.ID, score, old))
	}

	if manual || score >= old {
		rec.Claim = score
	}
	e.holders[idx] = a
	e.held[a.ID] = idx
	sink.Record(a.ID, fmt.Sprintf("assigned to %s with score %g", label, score))
	return Assigned(score, idx), evicted
}

func (e *Engine) releaseLocked(artifactID string, idx int, sink audit.Sink) {
	if rec := e.roster.Record(idx); rec != nil {
		rec.Claim = 0
	}
	delete(e.holders, idx)
	delete(e.held, artifactID)
	sink.Record(artifactID, "released "+e.labelLocked(idx))
}

// rankLocked scores every comparable record with the downgrade guard
// applied, best first, ties by index.
func (e *Engine) rankLocked(fs fields.FieldSet) []Candidate {
	var out []Candidate
	for _, rec := range e.roster.Records() {
		raw, ok := Score(fs, rec, e.columns)
		if !ok {
			continue
		}
		out = append(out, Candidate{Index: rec.Index, Raw: raw, Score: guard(raw, rec.Claim)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func (e *Engine) labelLocked(index int) string {
	rec := e.roster.Record(index)
	if rec == nil {
		return ""
	}
	if e.label == nil {
		return fmt.Sprintf("record-%d", index)
	}
	return e.label.Render(rec)
}
