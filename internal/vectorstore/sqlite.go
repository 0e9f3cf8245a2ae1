package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS collections (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    collection_id TEXT NOT NULL,
    text TEXT NOT NULL,
    embedding BLOB NOT NULL,
    dimension INTEGER NOT NULL,
    metadata TEXT,
    seq INTEGER,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (collection_id) REFERENCES collections(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection_id);
CREATE INDEX IF NOT EXISTS idx_documents_seq ON documents(collection_id, seq);
`

// SQLiteStore is the persistent collection backend. Similarity is computed
// with a Go cosine scan over the collection's embeddings; the ANN structure
// itself is treated as external and is not replicated here.
type SQLiteStore struct {
	db        *sql.DB
	dimension int
}

// OpenSQLite opens (creating if needed) the database at path. All collections
// in one store share a single embedding dimension.
func OpenSQLite(path string, dimension int) (*SQLiteStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dimension)
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db, dimension: dimension}, nil
}

// Collection returns the named collection, creating its row if absent.
func (s *SQLiteStore) Collection(id string) (Collection, error) {
	return s.CollectionAs(id, id)
}

// CollectionAs opens the physical collection stored under storage while
// serving the logical id. The collections table is keyed by storage name, so
// several generations of one logical collection can coexist during a rebuild.
func (s *SQLiteStore) CollectionAs(id, storage string) (Collection, error) {
	if id == "" || storage == "" {
		return nil, fmt.Errorf("%w: empty id", ErrUnknownCollection)
	}
	if _, err := s.db.Exec("INSERT OR IGNORE INTO collections (id) VALUES (?)", storage); err != nil {
		return nil, fmt.Errorf("failed to register collection %s: %w", storage, err)
	}
	return &sqliteCollection{store: s, id: id, storage: storage}, nil
}

// DropCollection deletes a collection and its documents.
func (s *SQLiteStore) DropCollection(ctx context.Context, storage string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection_id = ?", storage); err != nil {
		return fmt.Errorf("failed to delete documents of %s: %w", storage, err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", storage); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", storage, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// sqliteCollection serves the logical collection id from the rows stored
// under the storage name. Outside of rebuilds the two are the same.
type sqliteCollection struct {
	store   *SQLiteStore
	id      string
	storage string
}

func (c *sqliteCollection) ID() string {
	return c.id
}

func (c *sqliteCollection) Add(ctx context.Context, docs []types.Document) error {
	if len(docs) == 0 {
		return ErrEmptyBatch
	}

	// Validate the whole batch before touching the database.
	for i := range docs {
		if !docs[i].HasEmbedding() {
			return fmt.Errorf("document %s: %w", docs[i].ID, ErrMissingEmbedding)
		}
		if err := docs[i].Validate(c.store.dimension); err != nil {
			return err
		}
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, collection_id, text, embedding, dimension, metadata, seq)
		VALUES (?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM documents WHERE collection_id = ?))
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range docs {
		meta, err := json.Marshal(docs[i].Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", docs[i].ID, err)
		}
		blob := serializeVector(docs[i].Embedding)
		if _, err := stmt.ExecContext(ctx, docs[i].ID, c.storage, docs[i].Text, blob,
			len(docs[i].Embedding), string(meta), c.storage); err != nil {
			return fmt.Errorf("failed to insert document %s: %w", docs[i].ID, err)
		}
	}

	return tx.Commit()
}

func (c *sqliteCollection) Get(ctx context.Context, ids []string) ([]types.Document, error) {
	docs := make([]types.Document, 0, len(ids))
	for _, id := range ids {
		row := c.store.db.QueryRowContext(ctx,
			"SELECT id, text, embedding, metadata FROM documents WHERE collection_id = ? AND id = ?",
			c.storage, id)

		doc, err := scanDocument(row)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("document %s in collection %s: %w", id, c.id, types.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load document %s: %w", id, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *sqliteCollection) All(ctx context.Context) ([]types.Document, error) {
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT id, text, embedding, metadata FROM documents WHERE collection_id = ? ORDER BY seq",
		c.storage)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents of %s: %w", c.id, err)
	}
	defer func() { _ = rows.Close() }()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (c *sqliteCollection) Query(ctx context.Context, embedding []float32, k int) ([]types.RawHit, error) {
	if k <= 0 {
		return []types.RawHit{}, nil
	}

	rows, err := c.store.db.QueryContext(ctx,
		"SELECT id, text, embedding, metadata FROM documents WHERE collection_id = ? ORDER BY seq",
		c.storage)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings of %s: %w", c.id, err)
	}
	defer func() { _ = rows.Close() }()

	var hits []types.RawHit
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if len(doc.Embedding) != len(embedding) {
			continue // dimension mismatch against the query vector, skip
		}
		similarity := cosineSimilarity(embedding, doc.Embedding)
		hits = append(hits, types.RawHit{Document: doc, Distance: 1 - similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (c *sqliteCollection) Count(ctx context.Context) (int, error) {
	var count int
	err := c.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection_id = ?", c.storage).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents of %s: %w", c.id, err)
	}
	return count, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (types.Document, error) {
	var (
		doc      types.Document
		blob     []byte
		metaJSON sql.NullString
	)
	if err := row.Scan(&doc.ID, &doc.Text, &blob, &metaJSON); err != nil {
		return types.Document{}, err
	}
	doc.Embedding = deserializeVector(blob)
	if metaJSON.Valid && metaJSON.String != "" && metaJSON.String != "null" {
		if err := json.Unmarshal([]byte(metaJSON.String), &doc.Metadata); err != nil {
			return types.Document{}, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return doc, nil
}
