package task

import (
	"time"

	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/internal/syncer"
	"github.com/driftnotes/drift-sync-service/pkg/safeclose"

	"go.uber.org/zap"
)

// Manager creates and owns the background tasks.
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
}

func NewManager(logger *zap.Logger, sc *safeclose.SafeClose) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
	}
}

// RegisterTasks wires up every background task.
func (m *Manager) RegisterTasks(remote domain.RemoteStore, engine *syncer.Engine, probeInterval time.Duration) {
	m.scheduler.AddTask(NewOnlineProbeTask(remote, engine, probeInterval, m.logger))
}

// Start launches all registered tasks.
func (m *Manager) Start() {
	m.scheduler.Start()
}
