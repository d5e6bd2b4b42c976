package syncer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/driftnotes/drift-sync-service/internal/dao"
	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/internal/model"
	"github.com/driftnotes/drift-sync-service/internal/store"
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

// fakeRemote is an in-memory RemoteStore.
type fakeRemote struct {
	mu        sync.Mutex
	rows      map[string]*domain.SyncRecord
	upserts   int
	updates   int
	pingErr   error
	upsertErr error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{rows: map[string]*domain.SyncRecord{}}
}

func (f *fakeRemote) Select(ctx context.Context, filter domain.RemoteFilter) ([]*domain.SyncRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.SyncRecord
	for _, r := range f.rows {
		if filter["is_deleted"] == "false" && r.IsDeleted {
			continue
		}
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeRemote) Upsert(ctx context.Context, record *domain.SyncRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	clone := *record
	f.rows[record.ID] = &clone
	f.upserts++
	return nil
}

func (f *fakeRemote) Update(ctx context.Context, fields map[string]interface{}, filter domain.RemoteFilter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if r, ok := f.rows[filter["id"]]; ok {
		if v, ok := fields["is_deleted"].(bool); ok {
			r.IsDeleted = v
		}
		if v, ok := fields["updated_at"].(timex.Time); ok {
			r.UpdatedAt = v
		}
	}
	return nil
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeRemote) row(id string) *domain.SyncRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[id]; ok {
		clone := *r
		return &clone
	}
	return nil
}

func (f *fakeRemote) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

var _ domain.RemoteStore = (*fakeRemote)(nil)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	d := dao.New(db)
	st := store.New(dao.NewNoteRepository(d), dao.NewNoteLinkRepository(d), zap.NewNop())
	t.Cleanup(st.Close)
	return st
}

func newTestEngine(t *testing.T) (*Engine, *fakeRemote, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	remote := newFakeRemote()
	e := NewEngine(st, remote, nil, nil, Config{}, zap.NewNop())
	return e, remote, st
}

func seedLocalNote(t *testing.T, st *store.Store, content string, updatedAt timex.Time) *domain.Note {
	t.Helper()
	note := &domain.Note{
		ID:        uuid.NewString(),
		Title:     "note",
		Content:   content,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	require.NoError(t, st.Notes().Create(context.Background(), note))
	return note
}

func TestPullInsertsMissingRecords(t *testing.T) {
	e, remote, st := newTestEngine(t)
	ctx := context.Background()

	id := uuid.NewString()
	remote.rows[id] = &domain.SyncRecord{ID: id, Content: "from remote", UpdatedAt: timex.Now()}

	require.NoError(t, e.Pull(ctx))

	local, err := st.Notes().GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Equal(t, "from remote", local.Content)
	// Title is not replicated; a pulled-new record starts without one.
	assert.Empty(t, local.Title)
}

func TestPullLastWriterWins(t *testing.T) {
	e, remote, st := newTestEngine(t)
	ctx := context.Background()

	older := timex.Time(time.Now().Add(-time.Hour))
	newer := timex.Time(time.Now().Add(-time.Minute))

	stale := seedLocalNote(t, st, "local stale", older)
	fresh := seedLocalNote(t, st, "local fresh", newer)

	remote.rows[stale.ID] = &domain.SyncRecord{ID: stale.ID, Content: "remote newer", UpdatedAt: newer}
	remote.rows[fresh.ID] = &domain.SyncRecord{ID: fresh.ID, Content: "remote older", UpdatedAt: older}

	require.NoError(t, e.Pull(ctx))

	got, err := st.Notes().GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "remote newer", got.Content)

	got, err = st.Notes().GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "local fresh", got.Content)
}

func TestPullEqualTimestampKeepsLocal(t *testing.T) {
	e, remote, st := newTestEngine(t)
	ctx := context.Background()

	at := timex.Now()
	note := seedLocalNote(t, st, "local", at)
	remote.rows[note.ID] = &domain.SyncRecord{ID: note.ID, Content: "remote", UpdatedAt: at}

	require.NoError(t, e.Pull(ctx))

	got, err := st.Notes().GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "local", got.Content)
}

func TestPullIsIdempotent(t *testing.T) {
	e, remote, st := newTestEngine(t)
	ctx := context.Background()

	id := uuid.NewString()
	remote.rows[id] = &domain.SyncRecord{ID: id, Content: "c", UpdatedAt: timex.Now()}

	require.NoError(t, e.Pull(ctx))
	first, err := st.Notes().GetByID(ctx, id)
	require.NoError(t, err)

	require.NoError(t, e.Pull(ctx))
	second, err := st.Notes().GetByID(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, first.UpdatedAt.String(), second.UpdatedAt.String())
}

func TestFullPushUpsertsEveryRecord(t *testing.T) {
	e, remote, st := newTestEngine(t)
	ctx := context.Background()

	a := seedLocalNote(t, st, "a", timex.Now())
	b := seedLocalNote(t, st, "b", timex.Now())

	require.NoError(t, e.FullPush(ctx))

	require.NotNil(t, remote.row(a.ID))
	require.NotNil(t, remote.row(b.ID))
	assert.Equal(t, "a", remote.row(a.ID).Content)
	assert.Equal(t, 2, remote.upsertCount())
}

func TestPushReportsOutcome(t *testing.T) {
	e, remote, st := newTestEngine(t)
	ctx := context.Background()

	note := seedLocalNote(t, st, "flaky", timex.Now())

	remote.mu.Lock()
	remote.upsertErr = errors.New("remote down")
	remote.mu.Unlock()

	assert.False(t, e.push(ctx, note))
	assert.Nil(t, e.Status().LastPushAt)

	remote.mu.Lock()
	remote.upsertErr = nil
	remote.mu.Unlock()

	assert.True(t, e.push(ctx, note))
	assert.NotNil(t, e.Status().LastPushAt)
}

func TestFullPushSkipsWhenAlreadyRunning(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.mu.Lock()
	e.fullPushRunning = true
	e.mu.Unlock()

	err := e.FullPush(context.Background())
	assert.ErrorIs(t, err, ErrFullPushRunning)
}

func TestPushSuppressedWhileInFlight(t *testing.T) {
	e, remote, st := newTestEngine(t)

	note := seedLocalNote(t, st, "busy", timex.Now())

	require.True(t, e.acquire(note.ID))
	e.handleUpsert(note)

	// Nothing was scheduled, the record is mid-push elsewhere.
	assert.Zero(t, remote.upsertCount())

	e.release(note.ID)
	e.handleUpsert(note)
	require.Eventually(t, func() bool {
		return remote.upsertCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDeleteReplicatesAsFieldUpdate(t *testing.T) {
	e, remote, st := newTestEngine(t)
	ctx := context.Background()

	note := seedLocalNote(t, st, "going away", timex.Now())
	require.NoError(t, e.FullPush(ctx))

	deletedAt := timex.Now()
	note.IsDeleted = true
	note.UpdatedAt = deletedAt
	e.handleDelete(note)

	require.Eventually(t, func() bool {
		r := remote.row(note.ID)
		return r != nil && r.IsDeleted
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, deletedAt.String(), remote.row(note.ID).UpdatedAt.String())
}

func TestChangeFeedDrivesPush(t *testing.T) {
	e, remote, st := newTestEngine(t)
	ctx := context.Background()

	e.Initialize(ctx)

	note := &domain.Note{
		ID:        uuid.NewString(),
		Title:     "live",
		Content:   "v1",
		CreatedAt: timex.Now(),
		UpdatedAt: timex.Now(),
	}
	require.NoError(t, st.Insert(ctx, note))

	require.Eventually(t, func() bool {
		r := remote.row(note.ID)
		return r != nil && r.Content == "v1"
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, st.Patch(ctx, note.ID, map[string]interface{}{
		"content":    "v2",
		"updated_at": timex.Now(),
	}))

	require.Eventually(t, func() bool {
		r := remote.row(note.ID)
		return r != nil && r.Content == "v2"
	}, time.Second, 10*time.Millisecond)

	st.Close()
	e.Close()
}

func TestSetOnlineTransitionResyncs(t *testing.T) {
	e, remote, st := newTestEngine(t)
	ctx := context.Background()

	seedLocalNote(t, st, "pending", timex.Now())

	e.SetOnline(ctx, false)
	assert.False(t, e.Online())
	assert.Zero(t, remote.upsertCount())

	// Repeating the current state must not trigger anything.
	e.SetOnline(ctx, false)
	assert.Zero(t, remote.upsertCount())

	e.SetOnline(ctx, true)
	assert.True(t, e.Online())
	assert.Equal(t, 1, remote.upsertCount())
}

func TestStatusSnapshot(t *testing.T) {
	e, _, _ := newTestEngine(t)

	s := e.Status()
	assert.Equal(t, e.ClientID(), s.ClientID)
	assert.True(t, s.Online)
	assert.False(t, s.FullPushRunning)
	assert.Zero(t, s.InFlight)
	assert.Nil(t, s.LastPullAt)

	require.NoError(t, e.Pull(context.Background()))
	s = e.Status()
	require.NotNil(t, s.LastPullAt)
}
