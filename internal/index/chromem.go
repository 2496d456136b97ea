package index

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemIndex ranks records with chromem-go, a pure Go embedded vector
// database. Each owner gets its own collection so queries can never
// cross owner boundaries.
type ChromemIndex struct {
	db          *chromem.DB
	embedder    Embedder
	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// NewChromem creates an in-memory chromem index using the given embedder.
func NewChromem(embedder Embedder) *ChromemIndex {
	return &ChromemIndex{
		db:          chromem.NewDB(),
		embedder:    embedder,
		collections: make(map[string]*chromem.Collection),
	}
}

func (x *ChromemIndex) collection(ownerID string) (*chromem.Collection, error) {
	x.mu.RLock()
	col, ok := x.collections[ownerID]
	x.mu.RUnlock()
	if ok {
		return col, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	// Double-check after acquiring the write lock.
	if col, ok := x.collections[ownerID]; ok {
		return col, nil
	}

	// We supply embeddings ourselves and use the default cosine distance.
	col, err := x.db.GetOrCreateCollection(fmt.Sprintf("owner_%s", ownerID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	x.collections[ownerID] = col
	return col, nil
}

// Add indexes a record's content under its owner.
func (x *ChromemIndex) Add(ctx context.Context, ownerID, id, content string) error {
	col, err := x.collection(ownerID)
	if err != nil {
		return err
	}

	embedding, err := x.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed content: %w", err)
	}

	doc := chromem.Document{
		ID:        id,
		Content:   content,
		Embedding: embedding,
		Metadata:  map[string]string{"owner_id": ownerID},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Remove drops a record from its owner's index.
func (x *ChromemIndex) Remove(ctx context.Context, ownerID, id string) error {
	col, err := x.collection(ownerID)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Query returns up to limit ids ranked by cosine similarity.
func (x *ChromemIndex) Query(ctx context.Context, ownerID, query string, limit int) ([]Result, error) {
	col, err := x.collection(ownerID)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection size.
	if n := col.Count(); n < limit {
		limit = n
	}
	if limit == 0 {
		return nil, nil
	}

	embedding, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := col.QueryEmbedding(ctx, embedding, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{ID: hit.ID, Score: float64(hit.Similarity)})
	}
	return results, nil
}

// Name identifies the backing engine for the health probe.
func (x *ChromemIndex) Name() string { return "chromem" }

// Close releases resources. chromem keeps everything in memory, so
// there is nothing to release.
func (x *ChromemIndex) Close() error { return nil }
