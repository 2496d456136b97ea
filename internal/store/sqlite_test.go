package store

import (
	"context"
	"path/filepath"
	"testing"

	rerr "github.com/recall-oss/recall/internal/errors"
	"github.com/recall-oss/recall/internal/index"
	"github.com/recall-oss/recall/internal/memory"
)

func newSQLite(t *testing.T, idx index.Index) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "memories.db"), idx)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_CreateGet(t *testing.T) {
	s := newSQLite(t, nil)
	ctx := context.Background()

	id, err := s.Create(ctx, "alice", "drinks espresso", map[string]any{"category": "coffee"})
	if err != nil {
		t.Fatal(err)
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != id || rec.OwnerID != "alice" || rec.Content != "drinks espresso" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Metadata["category"] != "coffee" {
		t.Errorf("unexpected metadata: %v", rec.Metadata)
	}
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := newSQLite(t, nil)

	_, err := s.Get(context.Background(), "missing")
	if !rerr.IsNotFound(err) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestSQLiteStore_ListByOwner(t *testing.T) {
	s := newSQLite(t, nil)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		if _, err := s.Create(ctx, "alice", content, nil); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Create(ctx, "bob", "other", nil); err != nil {
		t.Fatal(err)
	}

	records, err := s.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.OwnerID != "alice" {
			t.Errorf("owner isolation violated: %+v", rec)
		}
	}
}

func TestSQLiteStore_SearchLike(t *testing.T) {
	s := newSQLite(t, nil)
	ctx := context.Background()

	if _, err := s.Create(ctx, "alice", "plays chess on Tuesdays", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, "alice", "vegetarian", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, "bob", "also plays chess", nil); err != nil {
		t.Fatal(err)
	}

	results, err := s.Search(ctx, "chess", "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].OwnerID != "alice" {
		t.Errorf("owner isolation violated: %+v", results[0])
	}
	if results[0].Score != 1.0 {
		t.Errorf("expected constant score, got %f", results[0].Score)
	}
}

func TestSQLiteStore_SearchIndexed(t *testing.T) {
	s := newSQLite(t, index.NewChromem(index.NewHashEmbedder(64)))
	ctx := context.Background()

	id, err := s.Create(ctx, "alice", "remember to water the plants", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, "bob", "water the garden", nil); err != nil {
		t.Fatal(err)
	}

	// The hash embedder is deterministic, so the exact same text ranks
	// itself with similarity 1.
	results, err := s.Search(ctx, "remember to water the plants", "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != id {
		t.Errorf("expected %s, got %s", id, results[0].ID)
	}
	if results[0].Score < 0.99 {
		t.Errorf("expected near-perfect similarity, got %f", results[0].Score)
	}

	// Deleted records leave the index too.
	if _, err := s.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}
	results, err = s.Search(ctx, "remember to water the plants", "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results after delete, got %d", len(results))
	}
}

func TestSQLiteStore_ReindexOnOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memories.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	id, err := first.Create(ctx, "alice", "persisted across restarts", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopen with an index attached; existing rows must be searchable.
	second, err := NewSQLiteStore(path, index.NewChromem(index.NewHashEmbedder(64)))
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	results, err := second.Search(ctx, "persisted across restarts", "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != id {
		t.Errorf("expected reindexed record, got %+v", results)
	}
}

func TestSQLiteStore_Update(t *testing.T) {
	s := newSQLite(t, nil)
	ctx := context.Background()

	id, err := s.Create(ctx, "alice", "v1", map[string]any{"a": "1"})
	if err != nil {
		t.Fatal(err)
	}

	content := "v2"
	rec, err := s.Update(ctx, id, memory.UpdateFields{Content: &content})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Content != "v2" || rec.Metadata["a"] != "1" {
		t.Errorf("unexpected record after content update: %+v", rec)
	}

	rec, err = s.Update(ctx, id, memory.UpdateFields{Metadata: map[string]any{"b": "2"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rec.Metadata["a"]; ok {
		t.Error("supplied metadata should replace the prior mapping entirely")
	}

	_, err = s.Update(ctx, "missing", memory.UpdateFields{Content: &content})
	if !rerr.IsNotFound(err) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestSQLiteStore_DeleteIdempotent(t *testing.T) {
	s := newSQLite(t, nil)
	ctx := context.Background()

	id, err := s.Create(ctx, "alice", "temp", nil)
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := s.Delete(ctx, id)
	if err != nil || !deleted {
		t.Fatalf("expected (true, nil), got (%v, %v)", deleted, err)
	}
	deleted, err = s.Delete(ctx, id)
	if err != nil || deleted {
		t.Fatalf("expected (false, nil), got (%v, %v)", deleted, err)
	}
}

func TestSQLiteStore_History(t *testing.T) {
	s := newSQLite(t, nil)
	ctx := context.Background()

	id, err := s.Create(ctx, "alice", "v1", map[string]any{"rev": "1"})
	if err != nil {
		t.Fatal(err)
	}
	content := "v2"
	if _, err := s.Update(ctx, id, memory.UpdateFields{Content: &content}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}

	entries, err := s.History(ctx, "alice", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []memory.HistoryEvent{memory.HistoryDeleted, memory.HistoryUpdated, memory.HistoryCreated}
	for i, ev := range want {
		if entries[i].Event != ev {
			t.Errorf("entry %d: expected %s, got %s", i, ev, entries[i].Event)
		}
	}
	if entries[2].Content != "v1" {
		t.Errorf("history should capture content at transition time, got %q", entries[2].Content)
	}
	if entries[2].Metadata["rev"] != "1" {
		t.Errorf("history should capture metadata, got %v", entries[2].Metadata)
	}

	limited, err := s.History(ctx, "alice", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].Event != memory.HistoryDeleted {
		t.Errorf("expected the most recent entry only, got %+v", limited)
	}
}

func TestSQLiteStore_HistorySurvivesDelete(t *testing.T) {
	s := newSQLite(t, nil)
	ctx := context.Background()

	id, err := s.Create(ctx, "alice", "gone but remembered", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}

	entries, err := s.History(ctx, "alice", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected history to survive record deletion, got %d entries", len(entries))
	}
}
