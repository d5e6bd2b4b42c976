// Package syncer implements bidirectional reconciliation between the local
// document store and the remote relational store: initial pull, full push,
// change-driven incremental push, periodic pull, and online-transition
// resync. Consistency is best-effort last-writer-wins by updated_at; every
// remote operation is independently fire-and-forget with no retry queue.
package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/internal/remote"
	"github.com/driftnotes/drift-sync-service/internal/store"
	"github.com/driftnotes/drift-sync-service/pkg/diff"
	"github.com/driftnotes/drift-sync-service/pkg/logger"
	"github.com/driftnotes/drift-sync-service/pkg/timex"
	"github.com/driftnotes/drift-sync-service/pkg/util"
	"github.com/driftnotes/drift-sync-service/pkg/workerpool"

	"github.com/denisbrodbeck/machineid"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrFullPushRunning is returned when a full push is requested while one is
// already running. The request is dropped, not queued; callers must not
// assume a full push always executes.
var ErrFullPushRunning = errors.New("full push already running")

// Config tunes the engine.
type Config struct {
	// PullSchedule is a cron spec driving the periodic pull, e.g. "@every 30s".
	PullSchedule string
}

// Engine orchestrates sync between the local store and the remote table.
// One instance lives per application session; all shared state is held on
// the struct so independent sessions never cross-contaminate.
type Engine struct {
	store   *store.Store
	remote  domain.RemoteStore
	pool    *workerpool.Pool
	logger  *zap.Logger
	metrics *Metrics
	config  Config

	clientID string

	mu              sync.Mutex
	inflight        map[string]struct{}
	fullPushRunning bool

	online     atomic.Bool
	lastPullAt atomic.Int64 // unix milli, 0 = never
	lastPushAt atomic.Int64

	cron       *cron.Cron
	consumerWg sync.WaitGroup
}

// Status is a point-in-time snapshot of the engine.
type Status struct {
	ClientID        string     `json:"clientId"`
	Online          bool       `json:"online"`
	FullPushRunning bool       `json:"fullPushRunning"`
	InFlight        int        `json:"inFlight"`
	QueuedPushes    int        `json:"queuedPushes"`
	LastPullAt      *time.Time `json:"lastPullAt"`
	LastPushAt      *time.Time `json:"lastPushAt"`
}

// NewEngine creates an engine. pool may be nil, in which case pushes run on
// a default-sized pool.
func NewEngine(st *store.Store, rs domain.RemoteStore, pool *workerpool.Pool, metrics *Metrics, cfg Config, lg *zap.Logger) *Engine {
	if lg == nil {
		lg = zap.NewNop()
	}
	if pool == nil {
		pool = workerpool.New(nil, lg)
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	clientID, err := machineid.ProtectedID("drift-sync")
	if err != nil {
		clientID = util.GetRandomString(32)
		lg.Warn("machine id unavailable, using random client id", zap.Error(err))
	}

	e := &Engine{
		store:    st,
		remote:   rs,
		pool:     pool,
		logger:   lg.With(zap.String(logger.FieldClientID, clientID)),
		metrics:  metrics,
		config:   cfg,
		clientID: clientID,
		inflight: make(map[string]struct{}),
	}
	e.online.Store(true)
	return e
}

// Initialize performs the startup sequence: pull, one-time full push,
// change-feed subscription, then the periodic pull timer. Failures during
// the initial pull and push are logged, never returned — initialization
// always succeeds from the caller's perspective.
func (e *Engine) Initialize(ctx context.Context) {
	if err := e.Pull(ctx); err != nil {
		e.logRemoteError("initial pull failed", err)
	}
	if err := e.FullPush(ctx); err != nil {
		e.logRemoteError("initial full push failed", err)
	}

	events := e.store.Subscribe()
	e.consumerWg.Add(1)
	go e.consume(events)

	if e.config.PullSchedule != "" {
		e.cron = cron.New()
		_, err := e.cron.AddFunc(e.config.PullSchedule, func() {
			if err := e.Pull(context.Background()); err != nil {
				e.logRemoteError("periodic pull failed", err)
			}
		})
		if err != nil {
			e.logger.Error("invalid pull schedule",
				zap.String("schedule", e.config.PullSchedule), zap.Error(err))
		} else {
			e.cron.Start()
		}
	}

	e.logger.Info("sync engine initialized",
		zap.String("pullSchedule", e.config.PullSchedule))
}

// Pull fetches all non-deleted remote records and applies them locally:
// absent records are inserted, present ones overwritten iff the remote
// updated_at is strictly greater (last-writer-wins). Remote rows never
// delete local rows; a remote tombstone arrives as a normal field update.
// Partial application before a failure is kept, not rolled back.
func (e *Engine) Pull(ctx context.Context) error {
	e.metrics.PullTotal.Inc()
	started := time.Now()

	rows, err := e.remote.Select(ctx, domain.RemoteFilter{"is_deleted": "false"})
	if err != nil {
		e.metrics.PullErrors.Inc()
		return errors.Wrap(err, "pull select")
	}

	applied := 0
	for _, row := range rows {
		local, err := e.store.Notes().GetByID(ctx, row.ID)
		if err != nil {
			e.metrics.PullErrors.Inc()
			return errors.Wrap(err, "pull lookup")
		}

		if local == nil {
			note := &domain.Note{
				ID:        row.ID,
				Content:   row.Content,
				IsDeleted: row.IsDeleted,
				CreatedAt: timex.Now(),
				UpdatedAt: row.UpdatedAt,
			}
			if err := e.store.Insert(ctx, note); err != nil {
				e.metrics.PullErrors.Inc()
				return errors.Wrap(err, "pull insert")
			}
			applied++
			continue
		}

		if !row.UpdatedAt.After(local.UpdatedAt) {
			continue
		}

		if summary := diff.Summarize(local.Content, row.Content); summary.Changed() {
			e.logger.Debug("pull overwrites local record",
				zap.String(logger.FieldRecordID, row.ID),
				zap.String("diff", summary.String()))
		}
		err = e.store.Patch(ctx, row.ID, map[string]interface{}{
			"content":    row.Content,
			"updated_at": row.UpdatedAt,
			"is_deleted": row.IsDeleted,
		})
		if err != nil {
			e.metrics.PullErrors.Inc()
			return errors.Wrap(err, "pull apply")
		}
		applied++
	}

	e.metrics.PullApplied.Add(float64(applied))
	e.lastPullAt.Store(time.Now().UnixMilli())
	e.logger.Debug("pull completed",
		zap.Int(logger.FieldCount, applied),
		zap.Duration(logger.FieldDuration, time.Since(started)))
	return nil
}

// FullPush pushes every local record to the remote store regardless of
// staleness. A second FullPush requested while one is running returns
// ErrFullPushRunning and does nothing. Per-record push failures are logged
// and skipped; the pass continues.
func (e *Engine) FullPush(ctx context.Context) error {
	e.mu.Lock()
	if e.fullPushRunning {
		e.mu.Unlock()
		e.metrics.FullPushSkips.Inc()
		e.logger.Warn("full push skipped, another one is running")
		return ErrFullPushRunning
	}
	e.fullPushRunning = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.fullPushRunning = false
		e.mu.Unlock()
	}()

	e.metrics.FullPushTotal.Inc()
	started := time.Now()

	notes, err := e.store.Notes().ListAll(ctx)
	if err != nil {
		return errors.Wrap(err, "full push list")
	}

	pushed := 0
	for _, note := range notes {
		if !e.acquire(note.ID) {
			e.metrics.PushSuppressed.Inc()
			continue
		}
		if e.push(ctx, note) {
			pushed++
		}
		e.release(note.ID)
	}

	e.logger.Info("full push completed",
		zap.Int(logger.FieldCount, pushed),
		zap.Duration(logger.FieldDuration, time.Since(started)))
	return nil
}

// consume drains the store change feed. A single consumer goroutine is the
// serialization point for the in-flight guard; the pushes themselves run
// concurrently on the worker pool.
func (e *Engine) consume(events <-chan domain.ChangeEvent) {
	defer e.consumerWg.Done()

	for ev := range events {
		switch ev.Op {
		case domain.ChangeOpInsert, domain.ChangeOpUpdate:
			e.handleUpsert(ev.Note)
		case domain.ChangeOpDelete:
			e.handleDelete(ev.Note)
		}
	}
}

func (e *Engine) handleUpsert(note *domain.Note) {
	if !e.acquire(note.ID) {
		e.metrics.PushSuppressed.Inc()
		e.logger.Debug("push suppressed, record already in flight",
			zap.String(logger.FieldRecordID, note.ID))
		return
	}
	err := e.pool.SubmitAsync(context.Background(), func(ctx context.Context) {
		defer e.release(note.ID)
		e.push(ctx, note)
	})
	if err != nil {
		e.release(note.ID)
		e.logger.Error("push not scheduled", zap.String(logger.FieldRecordID, note.ID), zap.Error(err))
	}
}

// handleDelete mirrors a local delete as a remote field update; the remote
// row is never removed.
func (e *Engine) handleDelete(note *domain.Note) {
	fields := map[string]interface{}{
		"is_deleted": true,
		"updated_at": note.UpdatedAt,
	}
	err := e.pool.SubmitAsync(context.Background(), func(ctx context.Context) {
		e.metrics.PushTotal.Inc()
		err := e.remote.Update(ctx, fields, domain.RemoteFilter{"id": note.ID})
		if err != nil {
			e.metrics.PushErrors.Inc()
			e.logRemoteError("remote tombstone failed", err,
				zap.String(logger.FieldRecordID, note.ID))
			return
		}
		e.lastPushAt.Store(time.Now().UnixMilli())
	})
	if err != nil {
		e.logger.Error("tombstone not scheduled", zap.String(logger.FieldRecordID, note.ID), zap.Error(err))
	}
}

// push upserts one record's replicated fields and reports whether the remote
// accepted it. Failures are logged and swallowed; the next pull or mutation
// is the only recovery path.
func (e *Engine) push(ctx context.Context, note *domain.Note) bool {
	e.metrics.PushTotal.Inc()
	if err := e.remote.Upsert(ctx, note.SyncView()); err != nil {
		e.metrics.PushErrors.Inc()
		e.logRemoteError("push failed", err,
			zap.String(logger.FieldRecordID, note.ID))
		return false
	}
	e.lastPushAt.Store(time.Now().UnixMilli())
	return true
}

// SetOnline records connectivity. An offline-to-online transition triggers
// a full push followed by a pull; both failures are logged, not returned.
func (e *Engine) SetOnline(ctx context.Context, online bool) {
	wasOnline := e.online.Swap(online)
	if online == wasOnline {
		return
	}
	if !online {
		e.logger.Warn("remote store offline, operating local-only")
		return
	}

	e.logger.Info("remote store back online, resyncing")
	if err := e.FullPush(ctx); err != nil {
		e.logRemoteError("resync full push failed", err)
	}
	if err := e.Pull(ctx); err != nil {
		e.logRemoteError("resync pull failed", err)
	}
}

// Online reports the last observed connectivity state.
func (e *Engine) Online() bool {
	return e.online.Load()
}

// ClientID returns the stable identifier of this sync session's machine.
func (e *Engine) ClientID() string {
	return e.clientID
}

// Status snapshots the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	inflight := len(e.inflight)
	running := e.fullPushRunning
	e.mu.Unlock()

	s := Status{
		ClientID:        e.clientID,
		Online:          e.online.Load(),
		FullPushRunning: running,
		InFlight:        inflight,
		QueuedPushes:    e.pool.Pending(),
	}
	if ms := e.lastPullAt.Load(); ms > 0 {
		t := time.UnixMilli(ms).UTC()
		s.LastPullAt = &t
	}
	if ms := e.lastPushAt.Load(); ms > 0 {
		t := time.UnixMilli(ms).UTC()
		s.LastPushAt = &t
	}
	return s
}

// Close stops the periodic pull and waits for the change consumer to drain.
// The store must be closed first so the event channel terminates.
func (e *Engine) Close() {
	if e.cron != nil {
		ctx := e.cron.Stop()
		<-ctx.Done()
	}
	e.consumerWg.Wait()
	e.logger.Info("sync engine stopped")
}

// acquire marks a record id as mid-push. It returns false when the id is
// already in flight; the caller must skip the push, not queue it.
func (e *Engine) acquire(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inflight[id]; busy {
		return false
	}
	e.inflight[id] = struct{}{}
	return true
}

func (e *Engine) release(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, id)
}

// logRemoteError logs remote failures, keeping the store's own error bundle
// intact when present.
func (e *Engine) logRemoteError(msg string, err error, fields ...zap.Field) {
	var remoteErr *remote.Error
	if errors.As(err, &remoteErr) {
		fields = append(fields,
			zap.String("remoteCode", remoteErr.Code),
			zap.String("remoteMessage", remoteErr.Message),
			zap.String("remoteDetails", remoteErr.Details),
			zap.String("remoteHint", remoteErr.Hint))
	} else {
		fields = append(fields, zap.Error(err))
	}
	e.logger.Error(msg, fields...)
}
