package audit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Event is one entry in an artifact's trail.
type Event struct {
	ArtifactID string
	Message    string
	RunID      string
	At         time.Time
}

// Sink accepts events. Implementations must not block on I/O.
type Sink interface {
	Record(artifactID, message string)
}

type discard struct{}

func (discard) Record(string, string) {}

// Discard drops every event.
var Discard Sink = discard{}

// Log buffers events in memory in arrival order.
type Log struct {
	mu      sync.Mutex
	runID   string
	now     func() time.Time
	pending []Event
}

// NewLog creates a buffer that stamps events with runID.
func NewLog(runID string) *Log {
	return &Log{runID: runID, now: time.Now}
}

// RunID returns the session identifier stamped on events.
func (l *Log) RunID() string {
	return l.runID
}

// Record appends an event. Blank messages are ignored.
func (l *Log) Record(artifactID, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, Event{
		ArtifactID: artifactID,
		Message:    message,
		RunID:      l.runID,
		At:         l.now().UTC(),
	})
}

// Len reports the number of buffered events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Drain returns and clears the buffered events.
func (l *Log) Drain() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

// Restore puts events back at the front of the buffer, used when persisting
// a drained batch failed.
func (l *Log) Restore(events []Event) {
	if len(events) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(append([]Event(nil), events...), l.pending...)
}

// EventWriter persists events, typically the artifact store.
type EventWriter interface {
	AppendEvents(ctx context.Context, events []Event) error
}

// Flush drains the buffer into store and appends the same events to the
// global log at globalPath. Either destination may be omitted. On a store
// failure the events are returned to the buffer.
func (l *Log) Flush(ctx context.Context, store EventWriter, globalPath string) (int, error) {
	events := l.Drain()
	if len(events) == 0 {
		return 0, nil
	}
	if store != nil {
		if err := store.AppendEvents(ctx, events); err != nil {
			l.Restore(events)
			return 0, fmt.Errorf("persist events: %w", err)
		}
	}
	if globalPath != "" {
		if err := AppendGlobal(globalPath, events); err != nil {
			return len(events), err
		}
	}
	return len(events), nil
}

// AppendGlobal appends events to the global log file, one
// "artifact<TAB>message" line each.
func AppendGlobal(path string, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open global log: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, ev := range events {
		msg := strings.ReplaceAll(ev.Message, "\n", " ")
		if _, err := fmt.Fprintf(w, "%s\t%s\n", ev.ArtifactID, msg); err != nil {
			return fmt.Errorf("write global log: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush global log: %w", err)
	}
	return file.Close()
}

// LastArtifact returns the artifact named on the final line of the global log,
// or "" when the log does not exist or is empty.
func LastArtifact(path string) (string, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open global log: %w", err)
	}
	defer file.Close()

	var last string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		last = line
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read global log: %w", err)
	}
	id, _, _ := strings.Cut(last, "\t")
	return id, nil
}
