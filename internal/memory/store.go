package memory

import "context"

// Store is the capability surface the service needs from the backing
// record engine. Implementations must be safe for concurrent use and
// must report an absent record as a NOT_FOUND coded error, never as a
// generic failure.
type Store interface {
	// Create persists a new record and returns its store-assigned id.
	Create(ctx context.Context, ownerID, content string, metadata map[string]any) (string, error)

	// Get returns the record with the given id.
	Get(ctx context.Context, id string) (*Record, error)

	// ListByOwner returns all records scoped to ownerID, most recently
	// updated first. An owner with no records yields an empty slice.
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)

	// Search returns up to limit records scoped to ownerID ranked by
	// relevance to query, highest score first.
	Search(ctx context.Context, query, ownerID string, limit int) ([]ScoredRecord, error)

	// Update applies a partial update and returns the resulting record.
	Update(ctx context.Context, id string, fields UpdateFields) (*Record, error)

	// Delete removes the record. It reports whether a record existed;
	// deleting a missing id is not an error.
	Delete(ctx context.Context, id string) (bool, error)

	// History returns up to limit state transitions for ownerID,
	// most recent first.
	History(ctx context.Context, ownerID string, limit int) ([]HistoryEntry, error)

	// Close releases any resources held by the store.
	Close() error
}
