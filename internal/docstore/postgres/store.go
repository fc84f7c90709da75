// Package postgres implements docstore.DocumentStore on PostgreSQL. Every
// collection is a single-column jsonb table, so tenant collections can be
// created and dropped with plain DDL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenantd/internal/docstore"
)

// Store implements docstore.DocumentStore using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed document store sharing the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateCollection creates the backing table for a collection. No-op if the
// collection already exists.
func (s *Store) CreateCollection(ctx context.Context, name string) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (doc jsonb NOT NULL)`, ident(name))

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, mapPostgresError(err))
	}

	log.Debug().Str("collection", name).Msg("Created collection")
	return nil
}

// DropCollection drops the backing table. No-op if absent.
func (s *Store) DropCollection(ctx context.Context, name string) error {
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, ident(name))

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", name, mapPostgresError(err))
	}

	log.Debug().Str("collection", name).Msg("Dropped collection")
	return nil
}

// CollectionExists reports whether the backing table exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check collection %s: %w", name, mapPostgresError(err))
	}
	return exists, nil
}

// EnsureUniqueIndex creates an expression unique index over a top-level
// document field. Idempotent.
func (s *Store) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	indexName := fmt.Sprintf("uniq_%s_%s", collection, field)
	query := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s ((doc->>%s))`,
		ident(indexName), ident(collection), literal(field))

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create unique index on %s.%s: %w",
			collection, field, mapPostgresError(err))
	}
	return nil
}

// InsertOne adds a document to a collection.
func (s *Store) InsertOne(ctx context.Context, collection string, doc docstore.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (doc) VALUES ($1)`, ident(collection))
	if _, err := s.pool.Exec(ctx, query, payload); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", collection, mapPostgresError(err))
	}
	return nil
}

// InsertMany adds documents in order within a single transaction.
func (s *Store) InsertMany(ctx context.Context, collection string, docs []docstore.Document) error {
	if len(docs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (doc) VALUES ($1)`, ident(collection))

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, doc := range docs {
			payload, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("failed to encode document: %w", err)
			}
			batch.Queue(query, payload)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to insert %d documents into %s: %w",
			len(docs), collection, mapPostgresError(err))
	}
	return nil
}

// FindOne returns the first document matching filter.
func (s *Store) FindOne(ctx context.Context, collection string, filter docstore.Document) (docstore.Document, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE doc @> $1 LIMIT 1`, ident(collection))

	payload, err := marshalFilter(filter)
	if err != nil {
		return nil, err
	}

	var raw []byte
	if err := s.pool.QueryRow(ctx, query, payload).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docstore.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to query %s: %w", collection, mapPostgresError(err))
	}

	return decodeDoc(raw)
}

// Find returns a snapshot of every document matching filter.
func (s *Store) Find(ctx context.Context, collection string, filter docstore.Document) ([]docstore.Document, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE doc @> $1`, ident(collection))

	payload, err := marshalFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, mapPostgresError(err))
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", collection, mapPostgresError(err))
	}
	return docs, nil
}

// UpdateOne merges set into the first document matching filter.
func (s *Store) UpdateOne(ctx context.Context, collection string, filter, set docstore.Document) (bool, error) {
	table := ident(collection)
	query := fmt.Sprintf(`
		UPDATE %s SET doc = doc || $2
		WHERE ctid = (SELECT ctid FROM %s WHERE doc @> $1 LIMIT 1)
	`, table, table)

	filterPayload, err := marshalFilter(filter)
	if err != nil {
		return false, err
	}
	setPayload, err := json.Marshal(set)
	if err != nil {
		return false, fmt.Errorf("failed to encode update: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, filterPayload, setPayload)
	if err != nil {
		return false, fmt.Errorf("failed to update %s: %w", collection, mapPostgresError(err))
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteOne removes the first document matching filter.
func (s *Store) DeleteOne(ctx context.Context, collection string, filter docstore.Document) (bool, error) {
	table := ident(collection)
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE ctid = (SELECT ctid FROM %s WHERE doc @> $1 LIMIT 1)
	`, table, table)

	payload, err := marshalFilter(filter)
	if err != nil {
		return false, err
	}

	tag, err := s.pool.Exec(ctx, query, payload)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", collection, mapPostgresError(err))
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteMany removes every document matching filter.
func (s *Store) DeleteMany(ctx context.Context, collection string, filter docstore.Document) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE doc @> $1`, ident(collection))

	payload, err := marshalFilter(filter)
	if err != nil {
		return 0, err
	}

	tag, err := s.pool.Exec(ctx, query, payload)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", collection, mapPostgresError(err))
	}
	return tag.RowsAffected(), nil
}

func marshalFilter(filter docstore.Document) ([]byte, error) {
	if filter == nil {
		filter = docstore.Document{}
	}
	payload, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter: %w", err)
	}
	return payload, nil
}

func decodeDoc(raw []byte) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// ident quotes a collection name for use as a SQL identifier. Collection
// names are already restricted to [a-z0-9_] by the naming codec, but quoting
// keeps DDL safe for any input.
func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// literal quotes a field name for use inside an index expression.
func literal(field string) string {
	return "'" + strings.ReplaceAll(field, "'", "''") + "'"
}
