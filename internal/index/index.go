// Package index provides the semantic ranking engine the record store
// delegates search to. The store treats it as opaque: documents go in,
// scored ids come out.
package index

import "context"

// Result is one ranked hit from a query.
type Result struct {
	ID    string
	Score float64
}

// Index ranks record content by relevance to a query, scoped per owner.
type Index interface {
	// Add indexes (or re-indexes) a record's content under its owner.
	Add(ctx context.Context, ownerID, id, content string) error

	// Remove drops a record from its owner's index.
	Remove(ctx context.Context, ownerID, id string) error

	// Query returns up to limit ids ranked by relevance, highest first.
	Query(ctx context.Context, ownerID, query string, limit int) ([]Result, error)

	// Name identifies the backing engine for the health probe.
	Name() string

	// Close releases resources.
	Close() error
}
