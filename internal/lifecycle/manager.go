// Package lifecycle owns the single shared record store instance and
// the service's readiness state machine.
package lifecycle

import (
	"fmt"
	"sync"

	"github.com/recall-oss/recall/internal/config"
	rerr "github.com/recall-oss/recall/internal/errors"
	"github.com/recall-oss/recall/internal/event"
	"github.com/recall-oss/recall/internal/index"
	"github.com/recall-oss/recall/internal/memory"
	"github.com/recall-oss/recall/internal/store"
	"github.com/recall-oss/recall/internal/telemetry"
)

// State is the lifecycle position of the shared store.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateDraining
	StateStopped
)

// String returns the state name used by the health probe.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Backends names the engines behind the store, for the health probe.
type Backends struct {
	Store    string `json:"store"`
	Index    string `json:"index"`
	Embedder string `json:"embedder"`
}

// Manager governs Uninitialized -> Ready -> Draining -> Stopped and is
// the sole gate between request handling and the store. Store
// construction happens once at startup; readiness checks are cheap and
// synchronous.
type Manager struct {
	mu       sync.RWMutex
	state    State
	store    memory.Store
	backends Backends
	bus      *event.Bus
	logger   *telemetry.Logger
}

// NewManager creates an uninitialized manager. The bus may be nil.
func NewManager(bus *event.Bus, logger *telemetry.Logger) *Manager {
	return &Manager{bus: bus, logger: logger}
}

// Initialize constructs the configured store and transitions to Ready.
// Configuration problems are fatal CONFIG_INVALID errors. Calling
// Initialize on anything but an uninitialized manager is an error.
func (m *Manager) Initialize(cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateUninitialized {
		return rerr.New(rerr.CodeUnexpected, fmt.Sprintf("initialize called in state %s", m.state))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var idx index.Index
	backends := Backends{Store: cfg.Store.Driver, Index: "none", Embedder: "none"}
	if cfg.Index.Driver == "chromem" {
		idx = index.NewChromem(index.NewHashEmbedder(cfg.Index.Dimensions))
		backends.Index = "chromem"
		backends.Embedder = "hash"
	}

	var (
		st  memory.Store
		err error
	)
	switch cfg.Store.Driver {
	case "memory":
		st = store.NewMemoryStore()
	case "sqlite":
		st, err = store.NewSQLiteStore(cfg.Store.Path, idx)
		if err != nil {
			return rerr.Wrap(rerr.CodeConfigInvalid, "failed to initialize sqlite store", err).
				WithSuggestion("check that store.path is writable")
		}
	default:
		// Validate catches this; kept for defense against direct construction.
		return rerr.New(rerr.CodeConfigInvalid, "unsupported store driver: "+cfg.Store.Driver)
	}

	m.store = st
	m.backends = backends
	m.state = StateReady

	m.logger.Info("memory store ready",
		"store", backends.Store, "index", backends.Index, "embedder", backends.Embedder)
	m.bus.Emit(event.NewEvent(event.ServiceReady, map[string]any{"store": backends.Store}))
	return nil
}

// Acquire returns the shared store when Ready, and an UNAVAILABLE error
// in every other state. It never blocks on store work.
func (m *Manager) Acquire() (memory.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != StateReady {
		return nil, rerr.New(rerr.CodeUnavailable, "memory service is not available")
	}
	return m.store, nil
}

// Shutdown drains and stops the manager, releasing store resources.
// It is idempotent; every call after the first is a no-op.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateStopped {
		return nil
	}
	if m.state != StateReady {
		m.state = StateStopped
		return nil
	}

	m.state = StateDraining
	m.bus.Emit(event.NewEvent(event.ServiceDraining, nil))

	var err error
	if m.store != nil {
		err = m.store.Close()
		m.store = nil
	}

	m.state = StateStopped
	m.logger.Info("memory store stopped")
	m.bus.Emit(event.NewEvent(event.ServiceStopped, nil))
	return err
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Ready reports whether operations can currently acquire the store.
func (m *Manager) Ready() bool {
	return m.State() == StateReady
}

// Backends reports the configured engine identities.
func (m *Manager) Backends() Backends {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backends
}
