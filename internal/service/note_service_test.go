package service

import (
	"context"
	"testing"

	"github.com/driftnotes/drift-sync-service/internal/domain"
	"github.com/driftnotes/drift-sync-service/internal/dto"
	"github.com/driftnotes/drift-sync-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNoteService(t *testing.T) (NoteService, LinkService, *store.Store) {
	t.Helper()
	noteRepo, linkRepo := newTestRepos(t)
	st := store.New(noteRepo, linkRepo, zap.NewNop())
	t.Cleanup(st.Close)
	linkSvc := NewLinkService(noteRepo, linkRepo, zap.NewNop())
	return NewNoteService(st, linkSvc, zap.NewNop()), linkSvc, st
}

func TestNoteCreateEmitsChangeAndLinks(t *testing.T) {
	svc, linkSvc, st := newTestNoteService(t)
	ctx := context.Background()

	events := st.Subscribe()

	_, err := svc.Create(ctx, &dto.NoteCreateRequest{Title: "Beta", Content: ""})
	require.NoError(t, err)
	<-events

	note, err := svc.Create(ctx, &dto.NoteCreateRequest{Title: "Alpha", Content: "see [[Beta]]"})
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, domain.ChangeOpInsert, ev.Op)
	assert.Equal(t, note.ID, ev.Note.ID)

	outgoing, err := linkSvc.GetOutgoingLinks(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.True(t, outgoing[0].Resolved)
}

func TestNoteUpdateBumpsTimestampAndReconciles(t *testing.T) {
	svc, linkSvc, _ := newTestNoteService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.NoteCreateRequest{Title: "Alpha", Content: "[[Beta]]"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &dto.NoteUpdateRequest{Content: "nothing"})
	require.NoError(t, err)
	assert.Equal(t, "nothing", updated.Content)
	assert.NotEqual(t, created.UpdatedAt, updated.UpdatedAt)

	outgoing, err := linkSvc.GetOutgoingLinks(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, outgoing)
}

func TestNoteRenameRetargetsBacklinks(t *testing.T) {
	svc, linkSvc, _ := newTestNoteService(t)
	ctx := context.Background()

	beta, err := svc.Create(ctx, &dto.NoteCreateRequest{Title: "Beta"})
	require.NoError(t, err)
	source, err := svc.Create(ctx, &dto.NoteCreateRequest{Title: "Alpha", Content: "[[Beta]]"})
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, beta.ID, &dto.NoteRenameRequest{Title: "Betamax"})
	require.NoError(t, err)
	assert.Equal(t, "Betamax", renamed.Title)

	outgoing, err := linkSvc.GetOutgoingLinks(ctx, source.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, "Betamax", outgoing[0].Link.TargetTitle)
}

func TestNoteTrashDropsLinksAndResolution(t *testing.T) {
	svc, linkSvc, _ := newTestNoteService(t)
	ctx := context.Background()

	source, err := svc.Create(ctx, &dto.NoteCreateRequest{Title: "Alpha", Content: "[[Beta]]"})
	require.NoError(t, err)

	require.NoError(t, svc.Trash(ctx, source.ID))

	outgoing, err := linkSvc.GetOutgoingLinks(ctx, source.ID)
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	notes, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestNoteDeleteTombstones(t *testing.T) {
	svc, _, st := newTestNoteService(t)
	ctx := context.Background()

	note, err := svc.Create(ctx, &dto.NoteCreateRequest{Title: "Alpha"})
	require.NoError(t, err)

	events := st.Subscribe()
	require.NoError(t, svc.Delete(ctx, note.ID))

	ev := <-events
	assert.Equal(t, domain.ChangeOpDelete, ev.Op)
	assert.True(t, ev.Note.IsDeleted)

	// The row survives as a tombstone, it only leaves the active listings.
	got, err := svc.Get(ctx, note.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	notes, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}
