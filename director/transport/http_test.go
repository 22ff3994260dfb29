package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replay-director/replay-director/director"
)

type fakeService struct {
	mu        sync.Mutex
	snapshots []director.Snapshot
	calls     []string
	err       error
}

func (f *fakeService) Ingest(snap director.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, snap)
}

func (f *fakeService) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeService) Pause(context.Context) error  { return f.record("pause") }
func (f *fakeService) Resume(context.Context) error { return f.record("resume") }
func (f *fakeService) Reset(context.Context) error  { return f.record("reset") }

func (f *fakeService) Status() director.Status {
	return director.Status{Phase: director.PhaseLive, Pending: 2}
}

func (f *fakeService) Snapshots() []director.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]director.Snapshot(nil), f.snapshots...)
}

const payload = `{"round": {"phase": "live"}, "allplayers": {"76561198000000001": {"name": "alpha", "observer_slot": 1, "state": {"health": 100}, "match_stats": {"kills": 1}}}}`

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestMux_IngestValidPayload(t *testing.T) {
	svc := &fakeService{}
	mux := NewMux(svc)

	for _, path := range []string{"/", "/gsi"} {
		w := serve(mux, http.MethodPost, path, payload)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "ok", w.Body.String(), path)
	}

	snaps := svc.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, director.PhaseLive, snaps[0].Phase)
	require.Len(t, snaps[0].Participants, 1)
	assert.Equal(t, "76561198000000001", snaps[0].Participants[0].ID)
}

func TestMux_IngestMalformed_400AndDropped(t *testing.T) {
	svc := &fakeService{}
	w := serve(NewMux(svc), http.MethodPost, "/", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.Snapshots())
}

func TestMux_IngestTooLarge(t *testing.T) {
	svc := &fakeService{}
	big := `{"pad": "` + strings.Repeat("x", maxPayloadBytes) + `"}`
	w := serve(NewMux(svc), http.MethodPost, "/", big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, svc.Snapshots())
}

func TestMux_WrongMethod(t *testing.T) {
	w := serve(NewMux(&fakeService{}), http.MethodGet, "/gsi", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMux_ControlEndpoints(t *testing.T) {
	svc := &fakeService{}
	mux := NewMux(svc)

	for _, name := range []string{"pause", "resume", "reset"} {
		w := serve(mux, http.MethodPost, "/control/"+name, "")
		assert.Equal(t, http.StatusNoContent, w.Code, name)
	}
	assert.Equal(t, []string{"pause", "resume", "reset"}, svc.calls)

	svc.err = errors.New("scheduler is not running")
	w := serve(mux, http.MethodPost, "/control/pause", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMux_Status(t *testing.T) {
	w := serve(NewMux(&fakeService{}), http.MethodGet, "/status", "")

	require.Equal(t, http.StatusOK, w.Code)
	var st director.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, director.PhaseLive, st.Phase)
	assert.Equal(t, 2, st.Pending)
}

func TestSnapshotHandler_DropsInvalid(t *testing.T) {
	svc := &fakeService{}
	h := SnapshotHandler(svc)

	h([]byte("garbage"))
	h([]byte(payload))

	assert.Len(t, svc.Snapshots(), 1)
}
