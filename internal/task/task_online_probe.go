package task

import (
	"context"
	"time"

	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/internal/syncer"

	"go.uber.org/zap"
)

// OnlineProbeTask pings the remote store and feeds the result into the sync
// engine. The offline-to-online edge is what triggers the engine's catch-up
// resync.
type OnlineProbeTask struct {
	remote   domain.RemoteStore
	engine   *syncer.Engine
	logger   *zap.Logger
	interval time.Duration
}

func NewOnlineProbeTask(remote domain.RemoteStore, engine *syncer.Engine, interval time.Duration, logger *zap.Logger) *OnlineProbeTask {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &OnlineProbeTask{
		remote:   remote,
		engine:   engine,
		logger:   logger,
		interval: interval,
	}
}

func (t *OnlineProbeTask) Name() string {
	return "OnlineProbe"
}

func (t *OnlineProbeTask) LoopInterval() time.Duration {
	return t.interval
}

func (t *OnlineProbeTask) IsStartupRun() bool {
	return true
}

func (t *OnlineProbeTask) Run(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := t.remote.Ping(pingCtx)
	cancel()

	online := err == nil
	if !online {
		t.logger.Debug("remote unreachable", zap.Error(err))
	}
	// The catch-up resync must not inherit the ping deadline.
	t.engine.SetOnline(ctx, online)
	return nil
}

var _ Task = (*OnlineProbeTask)(nil)
