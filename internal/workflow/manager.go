package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"markerid/internal/audit"
	"markerid/internal/config"
	"markerid/internal/fields"
	"markerid/internal/fileutil"
	"markerid/internal/logging"
	"markerid/internal/matching"
	"markerid/internal/queue"
	"markerid/internal/roster"
)

// ErrLocked is returned when another session holds the state directory.
var ErrLocked = errors.New("another markerid session is running")

// Manager coordinates the engine, the artifact store and the audit trail for
// one session.
type Manager struct {
	cfg        *config.Config
	store      *queue.Store
	logger     *slog.Logger
	lock       *flock.Flock
	runID      string
	events     *audit.Log
	engine     *matching.Engine
	classifier *fields.Classifier

	dirty     atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Option configures optional Manager behavior.
type Option func(*options)

type options struct {
	runID  string
	logger *slog.Logger
}

// WithRunID sets the session identifier stamped on events and log lines.
func WithRunID(runID string) Option {
	return func(o *options) {
		o.runID = runID
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open starts a session: it takes the lock, opens the store, loads the
// roster and rebuilds engine state from assigned artifacts.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("workflow requires a config")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, cfg.LockPath())
	}

	m := &Manager{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(o.logger, "workflow"),
		lock:       lock,
		runID:      o.runID,
		events:     audit.NewLog(o.runID),
		classifier: cfg.Classifier(),
	}
	if err := m.init(ctx); err != nil {
		if m.store != nil {
			_ = m.store.Close()
		}
		_ = lock.Unlock()
		return nil, err
	}
	return m, nil
}

func (m *Manager) init(ctx context.Context) error {
	store, err := queue.Open(m.cfg)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	m.store = store

	r, err := roster.Load(m.cfg.Paths.RosterFile, m.cfg.Roster.ClaimColumn)
	if err != nil {
		return err
	}
	if err := fileutil.CopyFile(m.cfg.Paths.RosterFile, m.cfg.RosterBackupPath()); err != nil {
		logging.WarnWithContext(m.logger, "roster backup failed", "roster_backup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the roster will be saved without a backup copy"),
			logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
		)
	}

	template, err := roster.CompileTemplate(m.cfg.Roster.LabelFormat, r)
	if err != nil {
		return fmt.Errorf("roster.label_format: %w", err)
	}
	columns, err := m.cfg.ColumnMap()
	if err != nil {
		return err
	}
	engine, err := matching.NewEngine(r, template, m.cfg.MatchingSettings(), columns)
	if err != nil {
		return fmt.Errorf("build match engine: %w", err)
	}
	m.engine = engine

	restored, err := m.rebuild(ctx)
	if err != nil {
		return err
	}
	m.logger.Info("session opened",
		logging.String("roster", m.cfg.Paths.RosterFile),
		logging.Int("records", r.Len()),
		logging.Int("restored_holders", restored),
	)
	return nil
}

// rebuild restores holders from assigned artifacts. Artifacts whose record
// no longer carries a claim, or is held by another artifact, return to
// pending.
func (m *Manager) rebuild(ctx context.Context) (int, error) {
	assigned, err := m.store.List(ctx, queue.StatusAssigned)
	if err != nil {
		return 0, err
	}
	restored := 0
	var stale []string
	for _, artifact := range assigned {
		err := m.engine.Restore(matching.Artifact{ID: artifact.ID, Fields: artifact.Fields}, artifact.RecordIndex)
		if err == nil {
			restored++
			continue
		}
		logging.WarnWithContext(logging.WithContext(logging.WithArtifactID(ctx, artifact.ID), m.logger),
			"assignment could not be restored", "restore_failed",
			logging.Error(err),
			logging.Int(logging.FieldRecordIndex, artifact.RecordIndex),
			logging.String(logging.FieldImpact, "artifact returns to pending and will be matched again"),
		)
		m.events.Record(artifact.ID, "assignment not restored: "+err.Error())
		stale = append(stale, artifact.ID)
	}
	for _, id := range stale {
		if err := m.store.MarkPending(ctx, id); err != nil {
			return restored, err
		}
	}
	return restored, nil
}

// RunID returns the session identifier.
func (m *Manager) RunID() string {
	return m.runID
}

// Store exposes the artifact store for read-only views.
func (m *Manager) Store() *queue.Store {
	return m.store
}

// Engine exposes the match engine.
func (m *Manager) Engine() *matching.Engine {
	return m.engine
}

// Close saves the roster if it changed, flushes the audit trail, closes the
// store and releases the lock. It is safe to call more than once.
func (m *Manager) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		ctx = context.WithoutCancel(ensureContext(ctx))
		var errs []error
		if m.dirty.Load() {
			if err := m.saveRoster(); err != nil {
				logging.ErrorWithContext(m.logger, "roster save failed", "roster_save_failed",
					logging.String("roster", m.cfg.Paths.RosterFile),
					logging.String(logging.FieldErrorHint, "claims are still in the artifact store; run 'markerid roster show' before retrying"),
					logging.Error(err),
				)
				errs = append(errs, err)
			}
		}
		if flushed, err := m.events.Flush(ctx, m.store, m.cfg.Paths.GlobalLogFile); err != nil {
			logging.ErrorWithContext(m.logger, "audit flush failed", "audit_flush_failed", logging.Error(err))
			errs = append(errs, fmt.Errorf("flush audit log: %w", err))
		} else if flushed > 0 {
			m.logger.Debug("audit log flushed", logging.Int("events", flushed))
		}
		if err := m.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close artifact store: %w", err))
		}
		if err := m.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release lock: %w", err))
		}
		m.closeErr = errors.Join(errs...)
		m.logger.Info("session closed", logging.Bool("roster_saved", m.dirty.Load()))
	})
	return m.closeErr
}

func (m *Manager) saveRoster() error {
	data, err := m.engine.Export()
	if err != nil {
		return fmt.Errorf("export roster: %w", err)
	}
	if err := fileutil.WriteFileAtomic(m.cfg.Paths.RosterFile, data, 0o644); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
