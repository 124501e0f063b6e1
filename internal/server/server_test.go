package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/subreader/subreader/internal/recognizer"
	"github.com/subreader/subreader/internal/status"
)

// mockController for testing.
type mockController struct {
	startErr error
	started  bool
	paused   bool
	resumed  bool
	stopped  bool
	preview  recognizer.Result
}

func (m *mockController) Start() error {
	if m.startErr != nil {
		return m.startErr
	}
	m.started = true
	return nil
}

func (m *mockController) Pause()  { m.paused = true }
func (m *mockController) Resume() { m.resumed = true }
func (m *mockController) Stop()   { m.stopped = true }

func (m *mockController) Status() status.Event {
	return status.Event{Type: "status", State: "running", Text: "last line"}
}

func (m *mockController) Preview() (recognizer.Result, error) {
	return m.preview, nil
}

func TestCORSMiddleware(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("OPTIONS", "/test", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("OPTIONS status = %d, want %d", rec.Code, http.StatusOK)
	}
	if v := rec.Header().Get("Access-Control-Allow-Origin"); v != "*" {
		t.Errorf("CORS origin = %q, want %q", v, "*")
	}

	req = httptest.NewRequest("GET", "/test", http.NoBody)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestControlEndpoints(t *testing.T) {
	ctrl := &mockController{}
	handler := New(ctrl, status.NewHub()).Handler()

	for _, path := range []string{"/api/start", "/api/pause", "/api/resume", "/api/stop"} {
		req := httptest.NewRequest("POST", path, http.NoBody)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("POST %s status = %d", path, rec.Code)
		}
	}

	if !ctrl.started || !ctrl.paused || !ctrl.resumed || !ctrl.stopped {
		t.Errorf("controller calls = %+v", ctrl)
	}
}

func TestStartConflict(t *testing.T) {
	ctrl := &mockController{startErr: errors.New("already running")}
	handler := New(ctrl, status.NewHub()).Handler()

	req := httptest.NewRequest("POST", "/api/start", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
		t.Errorf("error body = %v, %v", body, err)
	}
}

func TestStatusEndpoint(t *testing.T) {
	handler := New(&mockController{}, status.NewHub()).Handler()

	req := httptest.NewRequest("GET", "/api/status", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var evt status.Event
	if err := json.NewDecoder(rec.Body).Decode(&evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if evt.State != "running" || evt.Text != "last line" {
		t.Errorf("status = %+v", evt)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	ctrl := &mockController{preview: recognizer.Result{
		Text:       "Preview text",
		Confidence: 0.88,
		Reason:     recognizer.ReasonOK,
	}}
	handler := New(ctrl, status.NewHub()).Handler()

	req := httptest.NewRequest("GET", "/api/preview", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["text"] != "Preview text" || body["reason"] != "ok" {
		t.Errorf("preview body = %v", body)
	}
}

func TestWebSocketStreamsEvents(t *testing.T) {
	hub := status.NewHub()
	srv := httptest.NewServer(New(&mockController{}, hub).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// First message is the snapshot.
	var snapshot status.Event
	if err := wsjson.Read(ctx, conn, &snapshot); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snapshot.State != "running" {
		t.Errorf("snapshot = %+v", snapshot)
	}

	hub.Publish(status.Event{Type: "subtitle", Text: "streamed line"})

	var evt status.Event
	if err := wsjson.Read(ctx, conn, &evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if evt.Type != "subtitle" || evt.Text != "streamed line" {
		t.Errorf("event = %+v", evt)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := &rateLimiter{}

	for i := 0; i < RateLimitMessages; i++ {
		if !rl.allow() {
			t.Fatalf("message %d rejected inside limit", i)
		}
	}
	if rl.allow() {
		t.Error("message allowed beyond limit")
	}
}
