package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/driftnotes/drift-sync-service/internal/dao"
	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/internal/model"
	"github.com/driftnotes/drift-sync-service/internal/store"
	"github.com/driftnotes/drift-sync-service/internal/syncer"
	"github.com/driftnotes/drift-sync-service/pkg/timex"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// probeRemote records the contexts its writes run under.
type probeRemote struct {
	mu          sync.Mutex
	pingErr     error
	upserts     int
	sawDeadline bool
}

func (p *probeRemote) Select(ctx context.Context, filter domain.RemoteFilter) ([]*domain.SyncRecord, error) {
	return nil, nil
}

func (p *probeRemote) Upsert(ctx context.Context, record *domain.SyncRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.upserts++
	if _, ok := ctx.Deadline(); ok {
		p.sawDeadline = true
	}
	return nil
}

func (p *probeRemote) Update(ctx context.Context, fields map[string]interface{}, filter domain.RemoteFilter) error {
	return nil
}

func (p *probeRemote) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pingErr
}

func (p *probeRemote) setPingErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pingErr = err
}

var _ domain.RemoteStore = (*probeRemote)(nil)

func newProbeEngine(t *testing.T, remote domain.RemoteStore) (*syncer.Engine, *store.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	d := dao.New(db)
	st := store.New(dao.NewNoteRepository(d), dao.NewNoteLinkRepository(d), zap.NewNop())
	t.Cleanup(st.Close)
	return syncer.NewEngine(st, remote, nil, nil, syncer.Config{}, zap.NewNop()), st
}

func TestProbeFlipsEngineState(t *testing.T) {
	remote := &probeRemote{}
	engine, _ := newProbeEngine(t, remote)
	probe := NewOnlineProbeTask(remote, engine, time.Second, zap.NewNop())

	remote.setPingErr(errors.New("connection refused"))
	require.NoError(t, probe.Run(context.Background()))
	assert.False(t, engine.Online())

	remote.setPingErr(nil)
	require.NoError(t, probe.Run(context.Background()))
	assert.True(t, engine.Online())
}

func TestProbeResyncOutlivesPingDeadline(t *testing.T) {
	remote := &probeRemote{}
	engine, st := newProbeEngine(t, remote)
	probe := NewOnlineProbeTask(remote, engine, time.Second, zap.NewNop())

	note := &domain.Note{
		ID:        uuid.NewString(),
		Title:     "pending",
		Content:   "written while offline",
		CreatedAt: timex.Now(),
		UpdatedAt: timex.Now(),
	}
	require.NoError(t, st.Notes().Create(context.Background(), note))

	remote.setPingErr(errors.New("connection refused"))
	require.NoError(t, probe.Run(context.Background()))

	remote.setPingErr(nil)
	require.NoError(t, probe.Run(context.Background()))

	// The catch-up push runs under the task's context, not the ping timeout.
	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Equal(t, 1, remote.upserts)
	assert.False(t, remote.sawDeadline)
}
