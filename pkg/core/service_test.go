package core_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/notegraph/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances one minute per call so every save gets a distinct time.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestService(t *testing.T, policy core.TitlePolicy) (*core.Service, *MockStorage) {
	t.Helper()

	storage := NewMockStorage()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	seq := 0
	svc := core.NewService(storage, core.ServiceConfig{
		TitlePolicy: policy,
		Now:         clock.Now,
		NewID: func() string {
			seq++
			return fmt.Sprintf("n%d", seq)
		},
	})
	require.NoError(t, svc.Load(context.Background()))
	return svc, storage
}

func TestService_CRUD(t *testing.T) {
	svc, storage := newTestService(t, "")
	ctx := context.TODO()

	// 1. Create
	created, err := svc.SaveNote(ctx, core.NoteInput{Title: "", Content: "Meeting with #alice about [[Project X]] and #bob"})
	require.NoError(t, err)
	assert.Equal(t, "n1", created.ID)
	assert.Equal(t, core.DefaultTitle, created.Title)
	assert.Equal(t, []string{"alice", "bob"}, created.Tags)
	assert.Equal(t, created.Created, created.Updated)
	assert.Equal(t, 1, storage.sets, "every save flushes the whole collection")

	// 2. Update
	updated, err := svc.SaveNote(ctx, core.NoteInput{ID: created.ID, Title: "Standup", Content: "#carol only"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.Created, updated.Created, "created is fixed")
	assert.True(t, updated.Updated.After(created.Updated), "updated is refreshed")
	assert.Equal(t, []string{"carol"}, updated.Tags)

	// 3. Get
	got, err := svc.GetNote(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)

	_, err = svc.GetNote(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = svc.GetNote(ctx, "")
	assert.ErrorIs(t, err, core.ErrEmptyID)

	// 4. Persisted for the next session
	other := core.NewService(storage, core.ServiceConfig{})
	require.NoError(t, other.Load(ctx))
	reloaded, err := other.GetNote(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "#carol only", reloaded.Content)

	// 5. Delete (idempotent)
	require.NoError(t, svc.DeleteNote(ctx, created.ID))
	require.NoError(t, svc.DeleteNote(ctx, created.ID))
	_, err = svc.GetNote(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 3, storage.sets, "deleting an unknown note does not write")
}

func TestService_SaveNote_UnknownIDCreates(t *testing.T) {
	svc, _ := newTestService(t, "")
	ctx := context.Background()

	n, err := svc.SaveNote(ctx, core.NoteInput{ID: "chosen", Title: "Mine"})
	require.NoError(t, err)
	assert.Equal(t, "chosen", n.ID)
	assert.False(t, n.Created.IsZero())
}

func TestService_SaveNote_FlushFailureLeavesStateUntouched(t *testing.T) {
	svc, storage := newTestService(t, "")
	ctx := context.Background()

	first, err := svc.SaveNote(ctx, core.NoteInput{Title: "Keep", Content: "v1"})
	require.NoError(t, err)

	storage.failSet = errDiskFull
	_, err = svc.SaveNote(ctx, core.NoteInput{ID: first.ID, Title: "Keep", Content: "v2"})
	require.ErrorIs(t, err, errDiskFull)
	_, err = svc.SaveNote(ctx, core.NoteInput{Title: "Lost"})
	require.ErrorIs(t, err, errDiskFull)
	require.ErrorIs(t, svc.DeleteNote(ctx, first.ID), errDiskFull)

	notes, err := svc.ListNotes(ctx, core.ListOptions{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "v1", notes[0].Content)
}

func TestService_TitleReject(t *testing.T) {
	svc, _ := newTestService(t, core.TitleReject)
	ctx := context.Background()

	a, err := svc.SaveNote(ctx, core.NoteInput{Title: "Plan"})
	require.NoError(t, err)

	_, err = svc.SaveNote(ctx, core.NoteInput{Title: " Plan "})
	assert.ErrorIs(t, err, core.ErrDuplicateTitle)

	_, err = svc.SaveNote(ctx, core.NoteInput{ID: a.ID, Title: "Plan", Content: "edit"})
	assert.NoError(t, err, "a note may keep its own title")

	_, err = svc.SaveNote(ctx, core.NoteInput{})
	require.NoError(t, err)
	_, err = svc.SaveNote(ctx, core.NoteInput{})
	assert.ErrorIs(t, err, core.ErrDuplicateTitle, "the Untitled sentinel is a title too")
}

func TestService_ListNotes_ByTag(t *testing.T) {
	svc, _ := newTestService(t, "")
	ctx := context.Background()

	for _, c := range []string{"#work one", "#home two", "#work #home three"} {
		_, err := svc.SaveNote(ctx, core.NoteInput{Content: c})
		require.NoError(t, err)
	}

	work, err := svc.ListNotes(ctx, core.ListOptions{Tag: "work"})
	require.NoError(t, err)
	assert.Equal(t, []string{"n3", "n1"}, ids(work))

	all, err := svc.ListNotes(ctx, core.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	assert.Equal(t, []core.TagCount{{Tag: "home", Count: 2}, {Tag: "work", Count: 2}}, svc.Tags(ctx))
}

func TestService_ListNotes_MostRecentFirst(t *testing.T) {
	svc, _ := newTestService(t, "")
	ctx := context.Background()

	old, err := svc.SaveNote(ctx, core.NoteInput{Title: "Old"})
	require.NoError(t, err)
	_, err = svc.SaveNote(ctx, core.NoteInput{Title: "New"})
	require.NoError(t, err)

	notes, err := svc.ListNotes(ctx, core.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"n2", "n1"}, ids(notes))

	_, err = svc.SaveNote(ctx, core.NoteInput{ID: old.ID, Title: "Old", Content: "touched"})
	require.NoError(t, err)

	notes, err = svc.ListNotes(ctx, core.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "n2"}, ids(notes), "an edit moves the note to the top")

	t.Run("ties keep store order", func(t *testing.T) {
		stamp := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		tied, _ := newTestService(t, "")
		_, err := tied.Import(ctx, []core.Note{
			{ID: "x", Title: "X", Updated: stamp, Created: stamp},
			{ID: "y", Title: "Y", Updated: stamp, Created: stamp},
		})
		require.NoError(t, err)

		notes, err := tied.ListNotes(ctx, core.ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, ids(notes))
	})

	t.Run("backlinks keep store order", func(t *testing.T) {
		target, err := svc.FindByTitle(ctx, "New")
		require.NoError(t, err)
		_, err = svc.SaveNote(ctx, core.NoteInput{ID: "l1", Title: "L1", Content: "[[New]]"})
		require.NoError(t, err)
		_, err = svc.SaveNote(ctx, core.NoteInput{ID: "l2", Title: "L2", Content: "[[New]]"})
		require.NoError(t, err)

		backlinks, err := svc.Backlinks(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"l1", "l2"}, ids(backlinks))
	})
}

func TestService_GraphQueries(t *testing.T) {
	svc, _ := newTestService(t, "")
	ctx := context.Background()

	b, err := svc.SaveNote(ctx, core.NoteInput{Title: "B", Content: "line 1\n<i>line 2</i>"})
	require.NoError(t, err)
	a, err := svc.SaveNote(ctx, core.NoteInput{Title: "A", Content: "[[B]] and [[B]] and [[C]]"})
	require.NoError(t, err)

	backlinks, err := svc.Backlinks(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(backlinks))

	_, err = svc.Backlinks(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	links, err := svc.Links(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "B", "C"}, links)

	view, err := svc.View(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "line 1<br>&lt;i&gt;line 2&lt;/i&gt;", view.HTML)
	assert.Equal(t, []string{a.ID}, ids(view.Backlinks))

	view, err = svc.View(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, view.Links)

	t.Run("activate existing", func(t *testing.T) {
		act, err := svc.ActivateLink(ctx, "B")
		require.NoError(t, err)
		require.NotNil(t, act.Note)
		assert.False(t, act.Create)
		assert.Equal(t, b.ID, act.Note.ID)
	})

	t.Run("activate missing asks for creation", func(t *testing.T) {
		act, err := svc.ActivateLink(ctx, "C")
		require.NoError(t, err)
		assert.Nil(t, act.Note)
		assert.True(t, act.Create)
		assert.Equal(t, "C", act.Title)
	})

	t.Run("find by title", func(t *testing.T) {
		n, err := svc.FindByTitle(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, a.ID, n.ID)
		_, err = svc.FindByTitle(ctx, "Z")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestService_Import(t *testing.T) {
	svc, storage := newTestService(t, "")
	ctx := context.Background()

	existing, err := svc.SaveNote(ctx, core.NoteInput{ID: "keep", Title: "Keep"})
	require.NoError(t, err)

	stamp := time.Date(2023, 3, 3, 3, 3, 3, 0, time.UTC)
	n, err := svc.Import(ctx, []core.Note{
		{ID: "keep", Title: "Keep", Content: "#imported"},
		{Title: "Fresh", Content: "new"},
		{ID: "dated", Title: "Dated", Created: stamp},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, storage.sets, "import flushes once")

	kept, err := svc.GetNote(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, existing.Created, kept.Created)
	assert.Equal(t, []string{"imported"}, kept.Tags)

	dated, err := svc.GetNote(ctx, "dated")
	require.NoError(t, err)
	assert.Equal(t, stamp, dated.Created)
	assert.Equal(t, stamp, dated.Updated)

	fresh, err := svc.FindByTitle(ctx, "Fresh")
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.ID)
}

func TestService_Import_CountsDistinctNotes(t *testing.T) {
	svc, _ := newTestService(t, "")
	ctx := context.Background()

	n, err := svc.Import(ctx, []core.Note{
		{ID: "1", Title: "First", Content: "v1"},
		{ID: "1", Title: "First", Content: "v2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	notes, err := svc.ListNotes(ctx, core.ListOptions{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "v2", notes[0].Content)
}

func TestService_Import_RejectRollsBack(t *testing.T) {
	svc, _ := newTestService(t, core.TitleReject)
	ctx := context.Background()

	_, err := svc.SaveNote(ctx, core.NoteInput{Title: "Taken"})
	require.NoError(t, err)

	_, err = svc.Import(ctx, []core.Note{{ID: "x", Title: "Free"}, {ID: "y", Title: "Taken"}})
	require.ErrorIs(t, err, core.ErrDuplicateTitle)

	notes, err := svc.ListNotes(ctx, core.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestService_Unsupported(t *testing.T) {
	svc, _ := newTestService(t, "")
	ctx := context.Background()

	_, err := svc.Watch(ctx)
	assert.ErrorIs(t, err, core.ErrUnsupported)
	assert.ErrorIs(t, svc.Sync(ctx), core.ErrUnsupported)
}

func TestService_State(t *testing.T) {
	svc, _ := newTestService(t, core.TitleMostRecent)
	_, err := svc.SaveNote(context.Background(), core.NoteInput{Title: "x"})
	require.NoError(t, err)

	state, ok := svc.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, 1, state.Notes)
	assert.Equal(t, "recent", state.TitlePolicy)
	assert.Equal(t, core.DefaultNamespace, state.Namespace)
	assert.Equal(t, "storage", state.StorageType)
	assert.Equal(t, "service", svc.ComponentType())
}
