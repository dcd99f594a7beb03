package testsupport

import (
	"context"
	"testing"

	"markerid/internal/config"
	"markerid/internal/fields"
	"markerid/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewArtifact stores a pending artifact with the given fields.
func NewArtifact(t testing.TB, store *queue.Store, id string, fs fields.FieldSet) *queue.Artifact {
	t.Helper()

	artifact, err := store.Upsert(context.Background(), id, id+".jpg", nil, fs)
	if err != nil {
		t.Fatalf("store.Upsert: %v", err)
	}
	return artifact
}
