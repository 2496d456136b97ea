package memory

import (
	"context"

	rerr "github.com/recall-oss/recall/internal/errors"
	"github.com/recall-oss/recall/internal/event"
	"github.com/recall-oss/recall/internal/telemetry"
)

// StoreProvider gates access to the shared record store. Acquire fails
// with an UNAVAILABLE error whenever the store is not ready, including
// before startup and while draining.
type StoreProvider interface {
	Acquire() (Store, error)
}

// Service implements the record lifecycle operations by composing the
// readiness gate, boundary validation, and the record store. It issues
// exactly one store call per operation: no retries, no compensation.
type Service struct {
	provider StoreProvider
	bus      *event.Bus
	metrics  *telemetry.Metrics
	logger   *telemetry.Logger

	// Limits overrides the built-in defaults applied when a caller
	// omits a limit. Zero fields fall back to the package defaults.
	Limits Limits
}

// Limits holds the per-operation default limits.
type Limits struct {
	SearchDefault  int
	HistoryDefault int
}

// NewService creates the memory service. The bus and metrics may be nil.
func NewService(provider StoreProvider, bus *event.Bus, metrics *telemetry.Metrics, logger *telemetry.Logger) *Service {
	return &Service{
		provider: provider,
		bus:      bus,
		metrics:  metrics,
		logger:   logger,
	}
}

// Create stores a new memory record and returns its id.
func (s *Service) Create(ctx context.Context, ownerID, content string, metadata map[string]any) (string, error) {
	store, err := s.provider.Acquire()
	if err != nil {
		return "", err
	}
	if err := validateOwnerID(ownerID); err != nil {
		return "", err
	}
	if err := validateContent(content); err != nil {
		return "", err
	}
	metadata = normalizeMetadata(metadata)

	id, err := store.Create(ctx, ownerID, content, metadata)
	if err != nil {
		return "", s.fault("failed to add memory", err)
	}

	s.logger.WithTrace(ctx).Info("memory added", "memory_id", id, "user_id", ownerID)
	s.count(func(m *telemetry.Metrics) { m.IncCreates() })
	s.emit(event.MemoryCreated, map[string]any{"memory_id": id, "user_id": ownerID})
	return id, nil
}

// GetByID returns a single record. A missing id is a NOT_FOUND outcome,
// reported distinctly from store failures.
func (s *Service) GetByID(ctx context.Context, id string) (*Record, error) {
	store, err := s.provider.Acquire()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, rerr.New(rerr.CodeValidation, "memory_id required")
	}

	rec, err := store.Get(ctx, id)
	if err != nil {
		return nil, s.fault("failed to get memory", err)
	}

	s.count(func(m *telemetry.Metrics) { m.IncGets() })
	return rec, nil
}

// ListByOwner returns every record scoped to ownerID, most recently
// updated first. An owner with no records yields an empty slice.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	store, err := s.provider.Acquire()
	if err != nil {
		return nil, err
	}
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}

	records, err := store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.fault("failed to get memories", err)
	}
	if records == nil {
		records = []Record{}
	}

	s.count(func(m *telemetry.Metrics) { m.IncLists() })
	return records, nil
}

// Search returns records ranked by relevance to query, scoped to
// ownerID. Ranking is delegated entirely to the store's engine; an
// empty or no-match query yields an empty slice with no error.
func (s *Service) Search(ctx context.Context, query, ownerID string, limit int) ([]ScoredRecord, error) {
	store, err := s.provider.Acquire()
	if err != nil {
		return nil, err
	}
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}
	limit, err = normalizeLimit(limit, orDefault(s.Limits.SearchDefault, DefaultSearchLimit))
	if err != nil {
		return nil, err
	}
	if query == "" {
		return []ScoredRecord{}, nil
	}

	results, err := store.Search(ctx, query, ownerID, limit)
	if err != nil {
		return nil, s.fault("failed to search memories", err)
	}
	if results == nil {
		results = []ScoredRecord{}
	}

	s.logger.WithTrace(ctx).Info("memory search completed",
		"user_id", ownerID, "query", query, "results_count", len(results))
	s.count(func(m *telemetry.Metrics) { m.IncSearches() })
	s.emit(event.MemorySearched, map[string]any{"user_id": ownerID, "results": len(results)})
	return results, nil
}

// Update applies a partial update: only supplied fields are replaced.
// Metadata, when supplied, replaces the prior mapping entirely.
// Updating a missing id is a NOT_FOUND outcome.
func (s *Service) Update(ctx context.Context, id string, fields UpdateFields) (*Record, error) {
	store, err := s.provider.Acquire()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, rerr.New(rerr.CodeValidation, "memory_id required")
	}
	if err := validateUpdate(fields); err != nil {
		return nil, err
	}

	rec, err := store.Update(ctx, id, fields)
	if err != nil {
		return nil, s.fault("failed to update memory", err)
	}

	s.logger.WithTrace(ctx).Info("memory updated", "memory_id", id)
	s.count(func(m *telemetry.Metrics) { m.IncUpdates() })
	s.emit(event.MemoryUpdated, map[string]any{"memory_id": id})
	return rec, nil
}

// Delete removes a record. Deleting an id that no longer exists is a
// no-op success, which keeps delete idempotent. The returned bool
// reports whether a record was actually removed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	store, err := s.provider.Acquire()
	if err != nil {
		return false, err
	}
	if id == "" {
		return false, rerr.New(rerr.CodeValidation, "memory_id required")
	}

	deleted, err := store.Delete(ctx, id)
	if err != nil {
		return false, s.fault("failed to delete memory", err)
	}

	s.logger.WithTrace(ctx).Info("memory deleted", "memory_id", id, "existed", deleted)
	s.count(func(m *telemetry.Metrics) { m.IncDeletes() })
	if deleted {
		s.emit(event.MemoryDeleted, map[string]any{"memory_id": id})
	}
	return deleted, nil
}

// History returns past state transitions for ownerID, most recent
// first. Ordering follows store-assigned timestamps, not request
// arrival order.
func (s *Service) History(ctx context.Context, ownerID string, limit int) ([]HistoryEntry, error) {
	store, err := s.provider.Acquire()
	if err != nil {
		return nil, err
	}
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}
	limit, err = normalizeLimit(limit, orDefault(s.Limits.HistoryDefault, DefaultHistoryLimit))
	if err != nil {
		return nil, err
	}

	entries, err := store.History(ctx, ownerID, limit)
	if err != nil {
		return nil, s.fault("failed to get memory history", err)
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}

	s.count(func(m *telemetry.Metrics) { m.IncHistories() })
	return entries, nil
}

// fault normalizes store-level failures. Precise outcomes (not-found,
// validation) pass through; everything else becomes an opaque store
// fault so backing-engine internals never leak to clients.
func (s *Service) fault(msg string, err error) error {
	switch rerr.AsCode(err) {
	case rerr.CodeNotFound, rerr.CodeValidation:
		return err
	}
	s.logger.Error(msg, "error", err)
	s.count(func(m *telemetry.Metrics) { m.IncFailures() })
	return rerr.Wrap(rerr.CodeStore, msg, err)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func (s *Service) count(fn func(*telemetry.Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

func (s *Service) emit(t event.EventType, data map[string]any) {
	// Bus is nil-safe; Emit errors only come from blocking hooks.
	if err := s.bus.Emit(event.NewEvent(t, data)); err != nil {
		s.logger.Warn("event emit failed", "event", string(t), "error", err)
	}
}
