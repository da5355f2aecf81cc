package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/homados/internal/logger"
	"github.com/leandrodaf/homados/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu         sync.Mutex
	connectErr error
	connected  map[string]string
	played     [][]contracts.Note
	volumes    []float64
	previews   []previewRequest
	stopped    int
	events     chan contracts.NoteEvent
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		connected: make(map[string]string),
		events:    make(chan contracts.NoteEvent, 16),
	}
}

func (e *fakeEngine) ListDevices() contracts.DeviceList {
	return contracts.DeviceList{
		Inputs:  []contracts.Device{{ID: "input-0", Name: "Keys", Kind: contracts.InputPort}},
		Outputs: []contracts.Device{},
	}
}

func (e *fakeEngine) Connect(trackID, deviceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.connectErr != nil {
		return e.connectErr
	}
	e.connected[trackID] = deviceID
	return nil
}

func (e *fakeEngine) Disconnect(trackID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.connected, trackID)
}

func (e *fakeEngine) Tracks() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := []string{}
	for id := range e.connected {
		ids = append(ids, id)
	}
	return ids
}

func (e *fakeEngine) StartRecording(trackID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.connected[trackID]; !ok {
		return fmt.Errorf("%w: %q", contracts.ErrNotConnected, trackID)
	}
	return nil
}

func (e *fakeEngine) StopRecording(trackID string) ([]contracts.Note, error) {
	if err := e.StartRecording(trackID); err != nil {
		return nil, err
	}
	return []contracts.Note{{Note: 60, Velocity: 100, StartTime: 0.5, Duration: 0.25}}, nil
}

func (e *fakeEngine) Play(notes []contracts.Note, volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.played = append(e.played, notes)
	e.volumes = append(e.volumes, volume)
}

func (e *fakeEngine) StopPlayback() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped++
}

func (e *fakeEngine) PreviewNote(note, velocity uint8, volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.previews = append(e.previews, previewRequest{Note: note, Velocity: velocity, Volume: volume})
}

func (e *fakeEngine) Events() <-chan contracts.NoteEvent { return e.events }

func (e *fakeEngine) Close() error {
	close(e.events)
	return nil
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestDevicesAndTracks(t *testing.T) {
	engine := newFakeEngine()
	s := New(engine, logger.NewNopLogger())

	rec := do(t, s, http.MethodGet, "/api/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"inputs":[{"id":"input-0","name":"Keys","kind":"input"}],"outputs":[]}`, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/api/tracks/lead/input", `{"deviceId":"input-0"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "input-0", engine.connected["lead"])

	rec = do(t, s, http.MethodGet, "/api/tracks", "")
	assert.JSONEq(t, `{"tracks":["lead"]}`, rec.Body.String())

	rec = do(t, s, http.MethodDelete, "/api/tracks/lead/input", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodDelete, "/api/tracks/lead/input", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestConnectErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{contracts.ErrInvalidDeviceID, http.StatusBadRequest},
		{contracts.ErrPortUnavailable, http.StatusNotFound},
		{fmt.Errorf("%w: busy", contracts.ErrConnection), http.StatusBadGateway},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		engine := newFakeEngine()
		engine.connectErr = tt.err
		s := New(engine, logger.NewNopLogger())

		rec := do(t, s, http.MethodPut, "/api/tracks/lead/input", `{"deviceId":"input-9"}`)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.Contains(t, rec.Body.String(), tt.err.Error())
	}

	s := New(newFakeEngine(), logger.NewNopLogger())
	rec := do(t, s, http.MethodPut, "/api/tracks/lead/input", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecording(t *testing.T) {
	engine := newFakeEngine()
	s := New(engine, logger.NewNopLogger())

	rec := do(t, s, http.MethodPost, "/api/tracks/lead/recording/start", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	engine.connected["lead"] = "input-0"
	rec = do(t, s, http.MethodPost, "/api/tracks/lead/recording/start", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/tracks/lead/recording/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notes":[{"note":60,"velocity":100,"startTime":0.5,"duration":0.25}]}`, rec.Body.String())
}

func TestPlaybackAndPreview(t *testing.T) {
	engine := newFakeEngine()
	s := New(engine, logger.NewNopLogger())

	rec := do(t, s, http.MethodPost, "/api/playback", `{"notes":[{"note":62,"velocity":90,"startTime":0,"duration":1}],"volume":0.5}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/playback", `{"notes":[]}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/playback/stop", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	require.Len(t, engine.played, 2)
	assert.Equal(t, []contracts.Note{{Note: 62, Velocity: 90, Duration: 1}}, engine.played[0])
	assert.Equal(t, []float64{0.5, 1}, engine.volumes)
	assert.Equal(t, 1, engine.stopped)

	rec = do(t, s, http.MethodPost, "/api/preview", `{"note":69,"velocity":127,"volume":0.8}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []previewRequest{{Note: 69, Velocity: 127, Volume: 0.8}}, engine.previews)

	rec = do(t, s, http.MethodPost, "/api/preview", `{"note":200,"velocity":127,"volume":0.8}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaybackRejectsOutOfRangeNotes(t *testing.T) {
	engine := newFakeEngine()
	s := New(engine, logger.NewNopLogger())

	tests := []struct {
		name string
		body string
	}{
		{"note above 127", `{"notes":[{"note":200,"velocity":90,"startTime":0,"duration":1}]}`},
		{"velocity above 127", `{"notes":[{"note":60,"velocity":90,"startTime":0,"duration":1},{"note":62,"velocity":200,"startTime":1,"duration":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/playback", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, engine.played)
}

func TestCORSPreflight(t *testing.T) {
	s := New(newFakeEngine(), logger.NewNopLogger())
	rec := do(t, s, http.MethodOptions, "/api/playback", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventStream(t *testing.T) {
	engine := newFakeEngine()
	s := New(engine, logger.NewNopLogger())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	lines := make(chan string, 16)
	go func() {
		resp, err := http.Get(ts.URL + "/api/events")
		if err != nil {
			close(lines)
			return
		}
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	event := contracts.NoteEvent{TrackID: "lead", Note: 60, Velocity: 100, IsNoteOn: true, Time: 1.5}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(3 * time.Second)

	var gotEvent, gotData bool
	for !gotData {
		select {
		case <-ticker.C:
			select {
			case engine.events <- event:
			default:
			}
		case line, ok := <-lines:
			require.True(t, ok, "stream ended early")
			if line == "event:midi-note" {
				gotEvent = true
			}
			if data, found := strings.CutPrefix(line, "data:"); found {
				var got contracts.NoteEvent
				require.NoError(t, json.NewDecoder(bytes.NewBufferString(data)).Decode(&got))
				assert.Equal(t, event, got)
				gotData = true
			}
		case <-deadline:
			t.Fatal("no event streamed")
		}
	}
	assert.True(t, gotEvent)

	require.NoError(t, engine.Close())
	for range lines {
	}
}
