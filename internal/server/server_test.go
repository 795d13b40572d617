package server_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notegraph/internal/server"
	"github.com/aretw0/notegraph/pkg/adapters/memory"
	"github.com/aretw0/notegraph/pkg/core"
)

func newTestServer(t *testing.T, policy core.TitlePolicy, storageOpts ...memory.Option) *httptest.Server {
	t.Helper()
	svc := core.NewService(memory.New(storageOpts...), core.ServiceConfig{TitlePolicy: policy})
	require.NoError(t, svc.Load(context.Background()))

	ts := httptest.NewServer(server.NewRouter(svc, server.Options{CORSOrigins: []string{"http://app.test"}}))
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "")
	resp := do(t, ts, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNotesLifecycle(t *testing.T) {
	ts := newTestServer(t, "")

	resp := do(t, ts, http.MethodPost, "/notes", `{"title":"B","content":"<b>bold</b>\nline"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := decode[core.Note](t, resp)
	assert.NotEmpty(t, b.ID)

	resp = do(t, ts, http.MethodPost, "/notes", `{"title":"A","content":"#work see [[B]] and [[Nowhere]]"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	a := decode[core.Note](t, resp)
	assert.Equal(t, []string{"work"}, a.Tags)

	resp = do(t, ts, http.MethodPost, "/notes", `{"id":"`+a.ID+`","title":"A","content":"#work see [[B]] and [[Nowhere]] again"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "update of a known id")

	t.Run("get", func(t *testing.T) {
		resp := do(t, ts, http.MethodGet, "/notes/"+b.ID, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "B", decode[core.Note](t, resp).Title)

		assert.Equal(t, http.StatusNotFound, do(t, ts, http.MethodGet, "/notes/missing", "").StatusCode)
	})

	t.Run("list by tag", func(t *testing.T) {
		resp := do(t, ts, http.MethodGet, "/notes?tag=%23work", "")
		notes := decode[[]core.Note](t, resp)
		require.Len(t, notes, 1)
		assert.Equal(t, a.ID, notes[0].ID)

		all := decode[[]core.Note](t, do(t, ts, http.MethodGet, "/notes", ""))
		assert.Len(t, all, 2)
	})

	t.Run("view", func(t *testing.T) {
		v := decode[core.View](t, do(t, ts, http.MethodGet, "/notes/"+b.ID+"/view", ""))
		assert.Equal(t, "&lt;b&gt;bold&lt;/b&gt;<br>line", v.HTML)
		require.Len(t, v.Backlinks, 1)
		assert.Equal(t, a.ID, v.Backlinks[0].ID)
	})

	t.Run("backlinks and links", func(t *testing.T) {
		back := decode[[]core.Note](t, do(t, ts, http.MethodGet, "/notes/"+a.ID+"/backlinks", ""))
		assert.Empty(t, back)

		links := decode[[]string](t, do(t, ts, http.MethodGet, "/notes/"+a.ID+"/links", ""))
		assert.Equal(t, []string{"B", "Nowhere"}, links)
	})

	t.Run("tags", func(t *testing.T) {
		tags := decode[[]core.TagCount](t, do(t, ts, http.MethodGet, "/tags", ""))
		assert.Equal(t, []core.TagCount{{Tag: "work", Count: 1}}, tags)
	})

	t.Run("resolve", func(t *testing.T) {
		act := decode[core.Activation](t, do(t, ts, http.MethodGet, "/resolve?title="+url.QueryEscape("B"), ""))
		require.NotNil(t, act.Note)
		assert.Equal(t, b.ID, act.Note.ID)

		act = decode[core.Activation](t, do(t, ts, http.MethodGet, "/resolve?title=Nowhere", ""))
		assert.True(t, act.Create)
		assert.Nil(t, act.Note)

		assert.Equal(t, http.StatusBadRequest, do(t, ts, http.MethodGet, "/resolve", "").StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, do(t, ts, http.MethodDelete, "/notes/"+b.ID, "").StatusCode)
		assert.Equal(t, http.StatusNoContent, do(t, ts, http.MethodDelete, "/notes/"+b.ID, "").StatusCode)
		assert.Equal(t, http.StatusNotFound, do(t, ts, http.MethodGet, "/notes/"+b.ID, "").StatusCode)
	})
}

func TestDuplicateTitles(t *testing.T) {
	ts := newTestServer(t, "")

	first := decode[core.Note](t, do(t, ts, http.MethodPost, "/notes", `{"title":"Plan"}`))
	second := decode[core.Note](t, do(t, ts, http.MethodPost, "/notes", `{"title":"Plan"}`))
	do(t, ts, http.MethodPost, "/notes", `{"title":"Other"}`)

	dups := decode[map[string][]string](t, do(t, ts, http.MethodGet, "/titles/duplicates", ""))
	assert.Equal(t, map[string][]string{"Plan": {first.ID, second.ID}}, dups)
}

func TestErrorMapping(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		ts := newTestServer(t, "")
		assert.Equal(t, http.StatusBadRequest, do(t, ts, http.MethodPost, "/notes", `{`).StatusCode)
	})

	t.Run("duplicate title", func(t *testing.T) {
		ts := newTestServer(t, core.TitleReject)
		require.Equal(t, http.StatusCreated, do(t, ts, http.MethodPost, "/notes", `{"title":"Same"}`).StatusCode)
		assert.Equal(t, http.StatusConflict, do(t, ts, http.MethodPost, "/notes", `{"title":"Same"}`).StatusCode)
	})

	t.Run("read only", func(t *testing.T) {
		ts := newTestServer(t, "", memory.WithReadOnly(true))
		assert.Equal(t, http.StatusForbidden, do(t, ts, http.MethodPost, "/notes", `{"title":"x"}`).StatusCode)
	})
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, "")

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/notes", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://app.test", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, ln, http.NotFoundHandler(), nil)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * server.ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}
