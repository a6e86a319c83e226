package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cardwall/scramble/pkg/board"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(t *testing.T) *board.Board {
	t.Helper()
	b, err := board.New(2, 2, []string{"A", "A", "B", "B"})
	require.NoError(t, err)
	return b
}

func doRequest(handler http.HandlerFunc, method, target string, vars map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req = mux.SetURLVars(req, vars)
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestHandleLook(t *testing.T) {
	b := newTestBoard(t)

	w := doRequest(HandleLook(b), http.MethodGet, "/look/p1", map[string]string{"player": "p1"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "2x2\ndown\ndown\ndown\ndown\n", w.Body.String())
}

func TestHandleFlip(t *testing.T) {
	b := newTestBoard(t)

	w := doRequest(HandleFlip(b), http.MethodPost, "/flip/p1/0,0", map[string]string{
		"player": "p1", "row": "0", "col": "0",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2x2\nmy A\ndown\ndown\ndown\n", w.Body.String())
}

func TestHandleFlip_BadCoordinates(t *testing.T) {
	b := newTestBoard(t)

	w := doRequest(HandleFlip(b), http.MethodPost, "/flip/p1/x,0", map[string]string{
		"player": "p1", "row": "x", "col": "0",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(HandleFlip(b), http.MethodPost, "/flip/p1/5,0", map[string]string{
		"player": "p1", "row": "5", "col": "0",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleFlip_RuleRejection(t *testing.T) {
	b := newTestBoard(t)

	// p1 matches the pair of As and commits the removal
	require.NoError(t, b.Flip("p1", 0, 0))
	require.NoError(t, b.Flip("p1", 0, 1))
	require.NoError(t, b.Flip("p1", 1, 0))

	w := doRequest(HandleFlip(b), http.MethodPost, "/flip/p2/0,0", map[string]string{
		"player": "p2", "row": "0", "col": "0",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleTransform(t *testing.T) {
	b := newTestBoard(t)

	w := doRequest(HandleTransform(b), http.MethodPost, "/transform/p1/lower", map[string]string{
		"player": "p1", "fn": "lower",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(HandleFlip(b), http.MethodPost, "/flip/p1/0,0", map[string]string{
		"player": "p1", "row": "0", "col": "0",
	})
	assert.Equal(t, "2x2\nmy a\ndown\ndown\ndown\n", w.Body.String())
}

func TestHandleTransform_UnknownFn(t *testing.T) {
	b := newTestBoard(t)

	w := doRequest(HandleTransform(b), http.MethodPost, "/transform/p1/rot13", map[string]string{
		"player": "p1", "fn": "rot13",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubStats map[string]int

func (s stubStats) Snapshot() map[string]int { return s }

func TestHandleStats(t *testing.T) {
	w := doRequest(HandleStats(stubStats{"/look/p1": 2, "/flip/p1/0,0": 1}), http.MethodGet, "/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/flip/p1/0,0 1\n/look/p1 2\n", w.Body.String())
}

func TestHandleWatch(t *testing.T) {
	b := newTestBoard(t)

	type result struct {
		code int
		body string
	}
	done := make(chan result)
	go func() {
		w := doRequest(HandleWatch(b), http.MethodGet, "/watch/p2", map[string]string{"player": "p2"})
		done <- result{w.Code, w.Body.String()}
	}()

	// the watcher parks until something visibly changes
	select {
	case <-done:
		t.Fatal("watch returned before the board changed")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, b.Flip("p1", 0, 0))

	select {
	case res := <-done:
		assert.Equal(t, http.StatusOK, res.code)
		assert.Equal(t, "2x2\nup A\ndown\ndown\ndown\n", res.body)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after the board changed")
	}
}
