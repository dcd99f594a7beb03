package queue_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"markerid/internal/audit"
	"markerid/internal/fields"
	"markerid/internal/queue"
	"markerid/internal/testsupport"
)

func reviewIDs(t *testing.T, store *queue.Store) []string {
	t.Helper()
	queued, err := store.ReviewQueue(context.Background())
	if err != nil {
		t.Fatalf("ReviewQueue: %v", err)
	}
	ids := make([]string, 0, len(queued))
	for _, artifact := range queued {
		ids = append(ids, artifact.ID)
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if store.Path() != cfg.DatabasePath() {
		t.Fatalf("store path = %q, want %q", store.Path(), cfg.DatabasePath())
	}
	if _, err := os.Stat(cfg.DatabasePath()); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
}

func TestUpsertAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	fs := fields.FieldSet{FirstName: "JOHN", Surname: "SMITH", Date1: "1917-04-06"}
	created, err := store.Upsert(ctx, "IMG_0001", "scans/IMG_0001.jpg", []string{"JOHN", "SMITH"}, fs)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if created.Status != queue.StatusPending || created.RecordIndex != -1 || created.Queued() {
		t.Fatalf("unexpected new artifact: %+v", created)
	}
	if created.Fields != fs || len(created.Tokens) != 2 || created.Source != "scans/IMG_0001.jpg" {
		t.Fatalf("round trip lost data: %+v", created)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps")
	}

	if err := store.ApplyAssignment(ctx, "IMG_0001", 0, 100, "A-1"); err != nil {
		t.Fatalf("ApplyAssignment: %v", err)
	}
	fs.MiddleName = "Q"
	updated, err := store.Upsert(ctx, "IMG_0001", "scans/IMG_0001.jpg", nil, fs)
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if !updated.Assigned() || updated.Label != "A-1" {
		t.Fatalf("Upsert should keep match state, got %+v", updated)
	}
	if updated.Fields.MiddleName != "Q" || len(updated.Tokens) != 0 {
		t.Fatalf("Upsert should replace content, got %+v", updated)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("Get missing error = %v", err)
	}
	if _, err := store.Upsert(ctx, "  ", "", nil, fields.FieldSet{}); err == nil {
		t.Fatal("expected error for blank id")
	}
}

func TestAssignmentAndRejectionTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewArtifact(t, store, "a", fields.FieldSet{Surname: "SMITH"})
	testsupport.NewArtifact(t, store, "b", fields.FieldSet{Surname: "JONES"})
	testsupport.NewArtifact(t, store, "c", fields.FieldSet{Surname: "BROWN"})

	if err := store.ApplyAssignment(ctx, "a", 2, 91.5, "B-1"); err != nil {
		t.Fatal(err)
	}
	if err := store.ApplyRejection(ctx, "b", "no_match", false); err != nil {
		t.Fatal(err)
	}
	if err := store.ApplyRejection(ctx, "c", "fuzzy_tie", true); err != nil {
		t.Fatal(err)
	}

	a, _ := store.Get(ctx, "a")
	if a.Status != queue.StatusAssigned || a.RecordIndex != 2 || a.Score != 91.5 || a.Label != "B-1" {
		t.Fatalf("unexpected assigned artifact: %+v", a)
	}
	b, _ := store.Get(ctx, "b")
	if b.Status != queue.StatusUnmatched || b.Reason != "no_match" || b.Queued() {
		t.Fatalf("unexpected unmatched artifact: %+v", b)
	}
	c, _ := store.Get(ctx, "c")
	if c.Status != queue.StatusReview || c.Reason != "fuzzy_tie" || !c.Queued() {
		t.Fatalf("unexpected review artifact: %+v", c)
	}

	// An evicted artifact re-homed elsewhere leaves the queue.
	if err := store.ApplyAssignment(ctx, "c", 1, 80, "A-2"); err != nil {
		t.Fatal(err)
	}
	if ids := reviewIDs(t, store); len(ids) != 0 {
		t.Fatalf("queue = %v, want empty", ids)
	}

	assigned, err := store.List(ctx, queue.StatusAssigned)
	if err != nil {
		t.Fatal(err)
	}
	if len(assigned) != 2 || assigned[0].ID != "a" || assigned[1].ID != "c" {
		t.Fatalf("assigned list = %v", assigned)
	}

	if err := store.ApplyAssignment(ctx, "nope", 0, 100, "A-1"); !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewQueueOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		testsupport.NewArtifact(t, store, id, fields.FieldSet{Surname: id})
		if err := store.Enqueue(ctx, id, "no_match"); err != nil {
			t.Fatalf("Enqueue %s: %v", id, err)
		}
	}
	if ids := reviewIDs(t, store); !equalIDs(ids, []string{"a", "b", "c"}) {
		t.Fatalf("queue = %v", ids)
	}

	// Re-escalating a queued artifact keeps its place and updates the reason.
	if err := store.Enqueue(ctx, "a", "fuzzy_tie"); err != nil {
		t.Fatal(err)
	}
	front, err := store.PeekReview(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if front.ID != "a" || front.Reason != "fuzzy_tie" {
		t.Fatalf("front = %+v", front)
	}

	if err := store.Skip(ctx, "a"); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if ids := reviewIDs(t, store); !equalIDs(ids, []string{"b", "c", "a"}) {
		t.Fatalf("queue after skip = %v", ids)
	}

	next, err := store.NextReview(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if next.ID != "b" || next.Status != queue.StatusPending || next.Queued() {
		t.Fatalf("next = %+v", next)
	}
	if ids := reviewIDs(t, store); !equalIDs(ids, []string{"c", "a"}) {
		t.Fatalf("queue after next = %v", ids)
	}

	if err := store.MarkError(ctx, "c", "unreadable"); err != nil {
		t.Fatal(err)
	}
	c, _ := store.Get(ctx, "c")
	if c.Status != queue.StatusError || c.Note != "unreadable" || c.Queued() {
		t.Fatalf("error artifact = %+v", c)
	}

	if err := store.Skip(ctx, "b"); !errors.Is(err, queue.ErrNotQueued) {
		t.Fatalf("skip unqueued error = %v", err)
	}
	if err := store.Skip(ctx, "zzz"); !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("skip missing error = %v", err)
	}
}

func TestEmptyReviewQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.PeekReview(ctx); !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("PeekReview error = %v", err)
	}
	if _, err := store.NextReview(ctx); !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("NextReview error = %v", err)
	}
}

func TestResetAssignmentsAndCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewArtifact(t, store, "a", fields.FieldSet{Surname: "SMITH"})
	testsupport.NewArtifact(t, store, "b", fields.FieldSet{Surname: "JONES"})
	testsupport.NewArtifact(t, store, "c", fields.FieldSet{Surname: "BROWN"})
	_ = store.ApplyAssignment(ctx, "a", 0, 100, "A-1")
	_ = store.ApplyAssignment(ctx, "b", 1, 90, "A-2")
	_ = store.Enqueue(ctx, "c", "no_match")

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[queue.StatusAssigned] != 2 || counts[queue.StatusReview] != 1 || counts[queue.StatusError] != 0 {
		t.Fatalf("counts = %v", counts)
	}
	if len(counts) != len(queue.AllStatuses) {
		t.Fatalf("counts should include every status: %v", counts)
	}

	reset, err := store.ResetAssignments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if reset != 2 {
		t.Fatalf("reset = %d, want 2", reset)
	}
	a, _ := store.Get(ctx, "a")
	if a.Status != queue.StatusPending || a.RecordIndex != -1 || a.Label != "" {
		t.Fatalf("reset artifact = %+v", a)
	}
	c, _ := store.Get(ctx, "c")
	if c.Status != queue.StatusReview {
		t.Fatal("reset must not touch the review queue")
	}
}

func TestEventsFlushFromAuditLog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	log := audit.NewLog("run-7")
	log.Record("a", "assigned to A-1 (100)")
	log.Record("b", "no_match")
	log.Record("a", "evicted from A-1 by c")

	globalPath := filepath.Join(testsupport.BaseDir(cfg), "logs", "global.log")
	flushed, err := log.Flush(ctx, store, globalPath)
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if flushed != 3 {
		t.Fatalf("flushed = %d", flushed)
	}

	events, err := store.Events(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].Message != "assigned to A-1 (100)" || events[1].RunID != "run-7" {
		t.Fatalf("events = %+v", events)
	}
	if events[0].At.IsZero() || events[0].At.After(time.Now().Add(time.Minute)) {
		t.Fatalf("unexpected event time %v", events[0].At)
	}

	last, err := audit.LastArtifact(globalPath)
	if err != nil || last != "a" {
		t.Fatalf("LastArtifact = %q, %v", last, err)
	}

	if err := store.AppendEvents(ctx, nil); err != nil {
		t.Fatalf("AppendEvents(nil): %v", err)
	}
}
