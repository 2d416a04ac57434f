package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizhub/internal/domain"
)

// Store implements app.DocumentStore on a single Postgres documents table
// (path text primary key, data jsonb). The schema is created by the bun
// migrations in the migrations subpackage.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM documents WHERE path=$1`, path).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("select document %s: %w", path, err)
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, path string, doc json.RawMessage) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (path, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (path) DO UPDATE SET data=EXCLUDED.data`,
		path, []byte(doc))
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", path, err)
	}
	return nil
}

func (s *Store) SetIfAbsent(ctx context.Context, path string, doc json.RawMessage) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO documents (path, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (path) DO NOTHING`,
		path, []byte(doc))
	if err != nil {
		return false, fmt.Errorf("insert document %s: %w", path, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Remove(ctx context.Context, path string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE path=$1`, path); err != nil {
		return fmt.Errorf("delete document %s: %w", path, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM documents WHERE path LIKE $1`, collection+"/%")
	if err != nil {
		return nil, fmt.Errorf("list documents %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents %s: %w", collection, err)
	}
	return docs, nil
}
