package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	rerr "github.com/recall-oss/recall/internal/errors"
	"github.com/recall-oss/recall/internal/index"
	"github.com/recall-oss/recall/internal/memory"
)

// SQLiteStore persists memory records and their history in SQLite.
// Every mutation writes the record and its history row in one
// transaction. When a semantic index is attached, Search delegates
// ranking to it and mutations keep it in sync; without one, Search
// falls back to a case-insensitive LIKE match.
type SQLiteStore struct {
	db  *sql.DB
	idx index.Index // nil when no semantic index is configured
}

// NewSQLiteStore opens (or creates) the database at path. When idx is
// non-nil, existing records are reindexed so rankings survive restarts.
func NewSQLiteStore(path string, idx index.Index) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}

	s := &SQLiteStore{db: db, idx: idx}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate memory database: %w", err)
	}
	if idx != nil {
		if err := s.reindex(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to reindex memories: %w", err)
		}
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata JSON NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_memories_owner ON memories(owner_id);
	CREATE INDEX IF NOT EXISTS idx_memories_owner_updated ON memories(owner_id, updated_at);

	CREATE TABLE IF NOT EXISTS memory_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		memory_id TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		event TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata JSON NOT NULL,
		occurred_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_memory_history_owner ON memory_history(owner_id, occurred_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// reindex feeds every stored record into the semantic index.
func (s *SQLiteStore) reindex(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, owner_id, content FROM memories`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, ownerID, content string
		if err := rows.Scan(&id, &ownerID, &content); err != nil {
			return err
		}
		if err := s.idx.Add(ctx, ownerID, id, content); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Create persists a new record and returns its store-assigned id.
func (s *SQLiteStore) Create(ctx context.Context, ownerID, content string, metadata map[string]any) (string, error) {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO memories (id, owner_id, content, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, ownerID, content, metaJSON, now, now); err != nil {
		return "", err
	}
	if err := insertHistory(ctx, tx, id, ownerID, memory.HistoryCreated, content, metaJSON, now); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}

	if s.idx != nil {
		if err := s.idx.Add(ctx, ownerID, id, content); err != nil {
			return "", fmt.Errorf("index memory: %w", err)
		}
	}
	return id, nil
}

// Get returns the record with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*memory.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, content, metadata, created_at, updated_at
		FROM memories WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, rerr.New(rerr.CodeNotFound, "memory not found: "+id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByOwner returns the owner's records, most recently updated first.
func (s *SQLiteStore) ListByOwner(ctx context.Context, ownerID string) ([]memory.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, content, metadata, created_at, updated_at
		FROM memories
		WHERE owner_id = ?
		ORDER BY updated_at DESC, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]memory.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Search ranks the owner's records against query. With a semantic index
// attached the index supplies the ordering and scores; otherwise a
// case-insensitive LIKE match with a constant score of 1.0 is used.
func (s *SQLiteStore) Search(ctx context.Context, query, ownerID string, limit int) ([]memory.ScoredRecord, error) {
	if s.idx == nil {
		return s.searchLike(ctx, query, ownerID, limit)
	}

	hits, err := s.idx.Query(ctx, ownerID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index query: %w", err)
	}

	results := make([]memory.ScoredRecord, 0, len(hits))
	for _, hit := range hits {
		rec, err := s.Get(ctx, hit.ID)
		if rerr.IsNotFound(err) {
			// Index can lag a concurrent delete; skip the stale hit.
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, memory.ScoredRecord{Record: *rec, Score: hit.Score})
	}
	return results, nil
}

func (s *SQLiteStore) searchLike(ctx context.Context, query, ownerID string, limit int) ([]memory.ScoredRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, content, metadata, created_at, updated_at
		FROM memories
		WHERE owner_id = ? AND content LIKE ?
		ORDER BY updated_at DESC, id
		LIMIT ?
	`, ownerID, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]memory.ScoredRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, memory.ScoredRecord{Record: *rec, Score: 1.0})
	}
	return results, rows.Err()
}

// Update applies a partial update and returns the resulting record.
func (s *SQLiteStore) Update(ctx context.Context, id string, fields memory.UpdateFields) (*memory.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, owner_id, content, metadata, created_at, updated_at
		FROM memories WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, rerr.New(rerr.CodeNotFound, "memory not found: "+id)
	}
	if err != nil {
		return nil, err
	}

	if fields.Content != nil {
		rec.Content = *fields.Content
	}
	if fields.Metadata != nil {
		rec.Metadata = fields.Metadata
	}
	rec.UpdatedAt = time.Now().UTC()

	metaJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE memories SET content = ?, metadata = ?, updated_at = ? WHERE id = ?
	`, rec.Content, metaJSON, rec.UpdatedAt, id); err != nil {
		return nil, err
	}
	if err := insertHistory(ctx, tx, rec.ID, rec.OwnerID, memory.HistoryUpdated, rec.Content, metaJSON, rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if s.idx != nil && fields.Content != nil {
		if err := s.idx.Add(ctx, rec.OwnerID, rec.ID, rec.Content); err != nil {
			return nil, fmt.Errorf("reindex memory: %w", err)
		}
	}
	return rec, nil
}

// Delete removes a record, reporting whether it existed. Deleting a
// missing id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, owner_id, content, metadata, created_at, updated_at
		FROM memories WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	metaJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return false, fmt.Errorf("marshal metadata: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id); err != nil {
		return false, err
	}
	if err := insertHistory(ctx, tx, rec.ID, rec.OwnerID, memory.HistoryDeleted, rec.Content, metaJSON, time.Now().UTC()); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}

	if s.idx != nil {
		if err := s.idx.Remove(ctx, rec.OwnerID, id); err != nil {
			return false, fmt.Errorf("unindex memory: %w", err)
		}
	}
	return true, nil
}

// History returns the owner's state transitions, most recent first.
func (s *SQLiteStore) History(ctx context.Context, ownerID string, limit int) ([]memory.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT memory_id, owner_id, event, content, metadata, occurred_at
		FROM memory_history
		WHERE owner_id = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]memory.HistoryEntry, 0, limit)
	for rows.Next() {
		var entry memory.HistoryEntry
		var event string
		var metaJSON []byte
		if err := rows.Scan(&entry.MemoryID, &entry.OwnerID, &event, &entry.Content, &metaJSON, &entry.OccurredAt); err != nil {
			return nil, err
		}
		entry.Event = memory.HistoryEvent(event)
		if err := json.Unmarshal(metaJSON, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the database and the attached index.
func (s *SQLiteStore) Close() error {
	if s.idx != nil {
		if err := s.idx.Close(); err != nil {
			return err
		}
	}
	return s.db.Close()
}

func insertHistory(ctx context.Context, tx *sql.Tx, memoryID, ownerID string, ev memory.HistoryEvent, content string, metaJSON []byte, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO memory_history (memory_id, owner_id, event, content, metadata, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, memoryID, ownerID, string(ev), content, metaJSON, at)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*memory.Record, error) {
	var rec memory.Record
	var metaJSON []byte
	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Content, &metaJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metaJSON, &rec.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &rec, nil
}
