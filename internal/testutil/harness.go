package testutil

import (
	"sync"
	"testing"

	"github.com/recall-oss/recall/internal/config"
	"github.com/recall-oss/recall/internal/event"
	"github.com/recall-oss/recall/internal/lifecycle"
	"github.com/recall-oss/recall/internal/memory"
	"github.com/recall-oss/recall/internal/telemetry"
)

// TestHarness provides everything needed for service and server tests:
// config, a ready lifecycle over an in-memory store, the event bus, and
// captured events.
type TestHarness struct {
	T         *testing.T
	Config    *config.Config
	Lifecycle *lifecycle.Manager
	EventBus  *event.Bus
	Logger    *telemetry.Logger
	Metrics   *telemetry.Metrics
	Service   *memory.Service

	mu     sync.Mutex
	events []event.Event
}

// NewTestHarness creates a harness whose lifecycle is already Ready.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	logger := TestLogger()
	bus := event.NewBus(logger)
	metrics := telemetry.NewMetrics()

	h := &TestHarness{
		T:        t,
		Config:   TestConfig(),
		EventBus: bus,
		Logger:   logger,
		Metrics:  metrics,
	}
	bus.Register(&eventCapture{harness: h})

	h.Lifecycle = lifecycle.NewManager(bus, logger)
	if err := h.Lifecycle.Initialize(h.Config); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { h.Lifecycle.Shutdown() })

	h.Service = memory.NewService(h.Lifecycle, bus, metrics, logger)
	return h
}

// Events returns a copy of the captured events.
func (h *TestHarness) Events() []event.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := make([]event.Event, len(h.events))
	copy(cp, h.events)
	return cp
}

// TestLogger returns a quiet logger suitable for tests.
func TestLogger() *telemetry.Logger {
	return telemetry.NewLogger("error", "text")
}

// TestConfig returns a minimal in-memory configuration.
func TestConfig() *config.Config {
	return &config.Config{
		Name:    "recall-test",
		Version: "0.0.0",
		Store:   config.StoreConfig{Driver: "memory"},
		Index:   config.IndexConfig{Driver: "none"},
		Limits:  config.LimitsConfig{SearchDefault: 10, HistoryDefault: 50},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
}

// eventCapture is a blocking hook recording every event in order.
type eventCapture struct {
	harness *TestHarness
}

func (c *eventCapture) Name() string                 { return "capture" }
func (c *eventCapture) Matches(event.EventType) bool { return true }
func (c *eventCapture) IsBlocking() bool             { return true }

func (c *eventCapture) Handle(ev event.Event) error {
	c.harness.mu.Lock()
	defer c.harness.mu.Unlock()
	c.harness.events = append(c.harness.events, ev)
	return nil
}
