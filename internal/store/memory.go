package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	rerr "github.com/recall-oss/recall/internal/errors"
	"github.com/recall-oss/recall/internal/memory"
)

// MemoryStore is a process-local record store backed by maps. It is the
// default for tests and the "memory" driver; durable deployments use
// SQLiteStore.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*memory.Record        // id -> record
	history map[string][]memory.HistoryEntry // owner_id -> entries, oldest first
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*memory.Record),
		history: make(map[string][]memory.HistoryEntry),
	}
}

// Create persists a new record and returns its id.
func (s *MemoryStore) Create(_ context.Context, ownerID, content string, metadata map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec := &memory.Record{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Content:   content,
		Metadata:  copyMetadata(metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.records[rec.ID] = rec
	s.appendHistory(rec, memory.HistoryCreated, now)
	return rec.ID, nil
}

// Get returns the record with the given id.
func (s *MemoryStore) Get(_ context.Context, id string) (*memory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, rerr.New(rerr.CodeNotFound, "memory not found: "+id)
	}
	out := cloneRecord(rec)
	return &out, nil
}

// ListByOwner returns the owner's records, most recently updated first.
func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]memory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]memory.Record, 0)
	for _, rec := range s.records {
		if rec.OwnerID == ownerID {
			records = append(records, cloneRecord(rec))
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].UpdatedAt.After(records[j].UpdatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// Search performs a case-insensitive substring match over the owner's
// records with a constant score of 1.0, most recently updated first.
func (s *MemoryStore) Search(ctx context.Context, query, ownerID string, limit int) ([]memory.ScoredRecord, error) {
	records, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	results := make([]memory.ScoredRecord, 0, limit)
	for _, rec := range records {
		if len(results) == limit {
			break
		}
		if strings.Contains(strings.ToLower(rec.Content), needle) {
			results = append(results, memory.ScoredRecord{Record: rec, Score: 1.0})
		}
	}
	return results, nil
}

// Update applies a partial update and returns the resulting record.
func (s *MemoryStore) Update(_ context.Context, id string, fields memory.UpdateFields) (*memory.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, rerr.New(rerr.CodeNotFound, "memory not found: "+id)
	}

	if fields.Content != nil {
		rec.Content = *fields.Content
	}
	if fields.Metadata != nil {
		rec.Metadata = copyMetadata(fields.Metadata)
	}
	rec.UpdatedAt = time.Now().UTC()
	s.appendHistory(rec, memory.HistoryUpdated, rec.UpdatedAt)

	out := cloneRecord(rec)
	return &out, nil
}

// Delete removes a record, reporting whether it existed.
func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return false, nil
	}
	delete(s.records, id)
	s.appendHistory(rec, memory.HistoryDeleted, time.Now().UTC())
	return true, nil
}

// History returns the owner's state transitions, most recent first.
func (s *MemoryStore) History(_ context.Context, ownerID string, limit int) ([]memory.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[ownerID]
	out := make([]memory.HistoryEntry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// appendHistory records a state transition. Callers must hold the write lock.
func (s *MemoryStore) appendHistory(rec *memory.Record, ev memory.HistoryEvent, at time.Time) {
	s.history[rec.OwnerID] = append(s.history[rec.OwnerID], memory.HistoryEntry{
		MemoryID:   rec.ID,
		OwnerID:    rec.OwnerID,
		Event:      ev,
		Content:    rec.Content,
		Metadata:   copyMetadata(rec.Metadata),
		OccurredAt: at,
	})
}

func cloneRecord(rec *memory.Record) memory.Record {
	out := *rec
	out.Metadata = copyMetadata(rec.Metadata)
	return out
}

func copyMetadata(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
