package event

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// collectHook records every event it handles.
type collectHook struct {
	name     string
	types    []EventType
	blocking bool
	fail     error

	mu     sync.Mutex
	events []Event
}

func (h *collectHook) Name() string     { return h.name }
func (h *collectHook) IsBlocking() bool { return h.blocking }

func (h *collectHook) Matches(t EventType) bool {
	if len(h.types) == 0 {
		return true
	}
	for _, et := range h.types {
		if et == t {
			return true
		}
	}
	return false
}

func (h *collectHook) Handle(ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return h.fail
}

func (h *collectHook) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

type silentLogger struct{}

func (silentLogger) Warn(msg string, keyvals ...interface{}) {}

func TestBus_EmitBlocking(t *testing.T) {
	bus := NewBus(silentLogger{})
	hook := &collectHook{name: "collect", blocking: true}
	bus.Register(hook)

	if err := bus.Emit(NewEvent(MemoryCreated, map[string]any{"memory_id": "m1"})); err != nil {
		t.Fatal(err)
	}

	if hook.count() != 1 {
		t.Fatalf("expected 1 event, got %d", hook.count())
	}
	if hook.events[0].Type != MemoryCreated {
		t.Errorf("expected %s, got %s", MemoryCreated, hook.events[0].Type)
	}
	if hook.events[0].Data["memory_id"] != "m1" {
		t.Errorf("unexpected event data: %v", hook.events[0].Data)
	}
}

func TestBus_EmitNonBlocking(t *testing.T) {
	bus := NewBus(silentLogger{})
	hook := &collectHook{name: "async"}
	bus.Register(hook)

	if err := bus.Emit(NewEvent(MemoryDeleted, nil)); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hook.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("non-blocking hook never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBus_TypeFiltering(t *testing.T) {
	bus := NewBus(silentLogger{})
	hook := &collectHook{name: "updates-only", types: []EventType{MemoryUpdated}, blocking: true}
	bus.Register(hook)

	bus.Emit(NewEvent(MemoryCreated, nil))
	bus.Emit(NewEvent(MemoryUpdated, nil))
	bus.Emit(NewEvent(MemorySearched, nil))

	if hook.count() != 1 {
		t.Errorf("expected 1 matched event, got %d", hook.count())
	}
}

func TestBus_BlockingHookError(t *testing.T) {
	bus := NewBus(silentLogger{})
	bus.Register(&collectHook{name: "broken", blocking: true, fail: fmt.Errorf("boom")})

	err := bus.Emit(NewEvent(ServiceReady, nil))
	if err == nil {
		t.Fatal("expected blocking hook error to propagate")
	}
}

func TestBus_Disabled(t *testing.T) {
	bus := NewBus(silentLogger{})
	hook := &collectHook{name: "collect", blocking: true}
	bus.Register(hook)
	bus.SetEnabled(false)

	if err := bus.Emit(NewEvent(MemoryCreated, nil)); err != nil {
		t.Fatal(err)
	}
	if hook.count() != 0 {
		t.Errorf("disabled bus should not dispatch, got %d events", hook.count())
	}
}

func TestBus_NilSafe(t *testing.T) {
	var bus *Bus
	bus.Register(&collectHook{name: "noop"})
	bus.SetEnabled(true)
	if err := bus.Emit(NewEvent(MemoryCreated, nil)); err != nil {
		t.Errorf("nil bus Emit should be a no-op, got %v", err)
	}
}
