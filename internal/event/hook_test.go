package event

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fullLogger satisfies FullLogger and counts calls.
type fullLogger struct {
	mu    sync.Mutex
	calls int
}

func (l *fullLogger) Warn(msg string, keyvals ...interface{})  { l.bump() }
func (l *fullLogger) Info(msg string, keyvals ...interface{})  { l.bump() }
func (l *fullLogger) Debug(msg string, keyvals ...interface{}) { l.bump() }

func (l *fullLogger) bump() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
}

func TestWebhookHook_Execute(t *testing.T) {
	var received struct {
		mu   sync.Mutex
		body []byte
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received.mu.Lock()
		received.body = body
		received.mu.Unlock()
		w.WriteHeader(200)
	}))
	defer server.Close()

	hook := NewWebhookHook("test", server.URL, []EventType{MemoryCreated}, true)
	ev := NewEvent(MemoryCreated, map[string]interface{}{"memory_id": "m1"})
	err := hook.Handle(ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	received.mu.Lock()
	defer received.mu.Unlock()

	var payload Event
	if err := json.Unmarshal(received.body, &payload); err != nil {
		t.Fatalf("failed to parse webhook payload: %v", err)
	}
	if payload.Type != MemoryCreated {
		t.Errorf("expected MemoryCreated, got %s", payload.Type)
	}
	if payload.Data["memory_id"] != "m1" {
		t.Errorf("unexpected payload data: %v", payload.Data)
	}
}

func TestWebhookHook_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer server.Close()

	hook := NewWebhookHook("test", server.URL, []EventType{MemoryDeleted}, true)
	err := hook.Handle(NewEvent(MemoryDeleted, nil))
	if err == nil {
		t.Fatal("expected error from 500 status")
	}
}

func TestLogHook_Execute(t *testing.T) {
	logger := &fullLogger{}
	hook := NewLogHook("test", []EventType{MemoryCreated}, logger, "info")

	ev := NewEvent(MemoryCreated, map[string]interface{}{"memory_id": "m1"})
	if err := hook.Handle(ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.calls != 1 {
		t.Errorf("expected 1 log call, got %d", logger.calls)
	}
}

func TestLogHook_AlwaysNonBlocking(t *testing.T) {
	hook := NewLogHook("test", nil, &fullLogger{}, "debug")
	if hook.IsBlocking() {
		t.Error("log hook should always be non-blocking")
	}
}

func TestBaseHook_MatchesAll(t *testing.T) {
	h := &baseHook{name: "all", events: nil}
	if !h.Matches(MemoryCreated) {
		t.Error("nil events should match everything")
	}
	if !h.Matches(ServiceStopped) {
		t.Error("nil events should match everything")
	}
}

func TestBaseHook_MatchesNone(t *testing.T) {
	h := &baseHook{name: "specific", events: []EventType{ServiceReady}}
	if h.Matches(MemoryCreated) {
		t.Error("should not match MemoryCreated")
	}
}
