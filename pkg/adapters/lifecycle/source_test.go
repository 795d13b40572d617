package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notegraph/pkg/adapters/lifecycle"
	"github.com/aretw0/notegraph/pkg/core"
)

func TestSource_Forwards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 2)
	src := lifecycle.NewSource(in)
	require.NoError(t, src.Start(ctx))

	in <- core.Event{Type: core.EventModify, Key: "pkm_notes", Timestamp: 0}
	close(in)

	select {
	case e := <-src.Events():
		assert.Equal(t, "MODIFY pkm_notes @ 1970-01-01T00:00:00Z", e.String())
	case <-time.After(time.Second):
		t.Fatal("event not forwarded")
	}

	select {
	case _, open := <-src.Events():
		assert.False(t, open, "output closes with the input")
	case <-time.After(time.Second):
		t.Fatal("output not closed")
	}
}

func TestSource_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := lifecycle.NewSource(make(chan core.Event))
	require.NoError(t, src.Start(ctx))

	cancel()
	select {
	case _, open := <-src.Events():
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("output not closed after cancel")
	}
}

func TestSource_WithTypes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventCreate, Key: "pkm_notes"}
	in <- core.Event{Type: core.EventModify, Key: "pkm_notes"}
	in <- core.Event{Type: core.EventDelete, Key: "pkm_notes"}
	close(in)

	src := lifecycle.NewSource(in, lifecycle.WithTypes(core.EventDelete))
	require.NoError(t, src.Start(ctx))

	var got []string
	for e := range src.Events() {
		got = append(got, string(e.(core.Event).Type))
	}
	assert.Equal(t, []string{"DELETE"}, got)
}
