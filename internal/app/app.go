// Package app provides the application container holding all dependencies.
package app

import (
	"context"
	"fmt"

	"github.com/driftnotes/drift-sync-service/internal/dao"
	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/internal/remote"
	"github.com/driftnotes/drift-sync-service/internal/service"
	"github.com/driftnotes/drift-sync-service/internal/store"
	"github.com/driftnotes/drift-sync-service/internal/syncer"
	"github.com/driftnotes/drift-sync-service/pkg/workerpool"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the application container. It owns the dependency graph from the
// database handle up to the sync engine and the services.
type App struct {
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	workerPool *workerpool.Pool
	registry   *prometheus.Registry

	// Repository layer
	NoteRepo domain.NoteRepository
	LinkRepo domain.NoteLinkRepository

	// Reactive store and sync
	store  *store.Store
	remote *remote.Client
	engine *syncer.Engine

	// Service layer
	noteService   service.NoteService
	linkService   service.LinkService
	statusService service.StatusService
}

// NewApp builds the container and wires every dependency. The sync engine
// is constructed but not started; call Start once the process is ready.
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config: cfg,
		logger: logger,
		DB:     db,
	}

	a.Dao = dao.New(db)
	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.LinkRepo = dao.NewNoteLinkRepository(a.Dao)

	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector())
	a.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a.store = store.New(a.NoteRepo, a.LinkRepo, logger)

	a.remote = remote.NewClient(remote.Config{
		BaseURL: cfg.Remote.BaseURL,
		APIKey:  cfg.Remote.APIKey,
		Table:   cfg.Remote.Table,
	}, logger)

	a.engine = syncer.NewEngine(a.store, a.remote, a.workerPool,
		syncer.NewMetrics(a.registry),
		syncer.Config{PullSchedule: cfg.Sync.PullSchedule},
		logger)

	a.linkService = service.NewLinkService(a.NoteRepo, a.LinkRepo, logger)
	a.noteService = service.NewNoteService(a.store, a.linkService, logger)
	a.statusService = service.NewStatusService(a.engine, logger)

	return a, nil
}

// Start brings the sync engine online. Startup sync failures are logged,
// never fatal; the process serves local data regardless.
func (a *App) Start(ctx context.Context) {
	a.engine.Initialize(ctx)
}

// Shutdown stops sync and the push pool. The store closes first so the
// engine's consumer drains its feed and exits. The context bounds how long
// the caller is willing to wait.
func (a *App) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.store.Close()
		a.engine.Close()
		a.workerPool.Close()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) Config() *AppConfig { return a.config }

func (a *App) Logger() *zap.Logger { return a.logger }

func (a *App) Store() *store.Store { return a.store }

func (a *App) Remote() *remote.Client { return a.remote }

func (a *App) Engine() *syncer.Engine { return a.engine }

func (a *App) MetricsRegistry() *prometheus.Registry { return a.registry }

func (a *App) NoteService() service.NoteService { return a.noteService }

func (a *App) LinkService() service.LinkService { return a.linkService }

func (a *App) StatusService() service.StatusService { return a.statusService }
