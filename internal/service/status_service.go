package service

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/driftnotes/drift-sync-service/internal/syncer"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ProcessStatus is a snapshot of the service process.
type ProcessStatus struct {
	PID        int32   `json:"pid"`
	Goroutines int     `json:"goroutines"`
	MemoryMB   float64 `json:"memoryMb"`
	CPUPercent float64 `json:"cpuPercent"`
	UptimeSec  int64   `json:"uptimeSec"`
}

// StatusDTO bundles sync and process state for the status endpoint.
type StatusDTO struct {
	Sync    syncer.Status  `json:"sync"`
	Process *ProcessStatus `json:"process,omitempty"`
}

// StatusService exposes sync engine state and a manual resync trigger.
type StatusService interface {
	// Status returns the current engine and process snapshot.
	Status(ctx context.Context) *StatusDTO

	// Resync runs a pull followed by a full push. Concurrent calls are
	// collapsed into one run; every caller gets that run's result.
	Resync(ctx context.Context) error
}

// statusService implements StatusService
type statusService struct {
	engine  *syncer.Engine
	logger  *zap.Logger
	group   singleflight.Group
	started time.Time
}

// NewStatusService creates a StatusService instance
func NewStatusService(engine *syncer.Engine, lg *zap.Logger) StatusService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &statusService{
		engine:  engine,
		logger:  lg,
		started: time.Now(),
	}
}

func (s *statusService) Status(ctx context.Context) *StatusDTO {
	out := &StatusDTO{Sync: s.engine.Status()}

	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		s.logger.Debug("process stats unavailable", zap.Error(err))
		return out
	}

	ps := &ProcessStatus{
		PID:        proc.Pid,
		Goroutines: runtime.NumGoroutine(),
		UptimeSec:  int64(time.Since(s.started).Seconds()),
	}
	if mem, err := proc.MemoryInfoWithContext(ctx); err == nil {
		ps.MemoryMB = float64(mem.RSS) / 1024 / 1024
	}
	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		ps.CPUPercent = cpu
	}
	out.Process = ps
	return out
}

func (s *statusService) Resync(ctx context.Context) error {
	_, err, _ := s.group.Do("resync", func() (interface{}, error) {
		if err := s.engine.Pull(ctx); err != nil {
			return nil, err
		}
		return nil, s.engine.FullPush(ctx)
	})
	return err
}

// Ensure statusService implements StatusService
var _ StatusService = (*statusService)(nil)
