package memory

import "time"

// Record is a single user-scoped memory: a textual fact with attached
// structured metadata. IDs and timestamps are assigned by the store;
// OwnerID never changes for the lifetime of a record.
type Record struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"user_id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// HistoryEvent identifies the kind of state transition a history entry records.
type HistoryEvent string

const (
	HistoryCreated HistoryEvent = "created"
	HistoryUpdated HistoryEvent = "updated"
	HistoryDeleted HistoryEvent = "deleted"
)

// HistoryEntry is an audit record of one past state transition of a
// memory record. Entries are produced by the store as a side effect of
// mutations and are read-only above the store layer.
type HistoryEntry struct {
	MemoryID   string         `json:"memory_id"`
	OwnerID    string         `json:"user_id"`
	Event      HistoryEvent   `json:"event"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// ScoredRecord pairs a record with its relevance to a search query.
// Scoring is delegated entirely to the backing engine.
type ScoredRecord struct {
	Record
	Score float64 `json:"score"`
}

// UpdateFields carries the optional fields of a partial update.
// A nil field keeps the record's prior value; Metadata, when set,
// replaces the prior mapping entirely.
type UpdateFields struct {
	Content  *string
	Metadata map[string]any
}

// IsEmpty reports whether no recognized field is set.
func (f UpdateFields) IsEmpty() bool {
	return f.Content == nil && f.Metadata == nil
}
