package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"rental_sync/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS postmeta (
  meta_id    INTEGER PRIMARY KEY AUTOINCREMENT,
  post_id    INTEGER NOT NULL DEFAULT 0,
  meta_key   TEXT,
  meta_value TEXT
);
CREATE INDEX IF NOT EXISTS postmeta_post_key ON postmeta (post_id, meta_key);
`

// Store is a postmeta table in a local SQLite file, used for dry runs.
type Store struct {
	db   *sql.DB
	path string
}

var _ domain.PostMetaRepository = (*Store)(nil)

// Open opens or creates the database at path and makes sure the table
// exists. ":memory:" gives a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) UpsertPostMeta(ctx context.Context, postID int64, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var metaID int64
	err = tx.QueryRowContext(ctx,
		"SELECT meta_id FROM postmeta WHERE post_id = ? AND meta_key = ? ORDER BY meta_id LIMIT 1",
		postID, key).Scan(&metaID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, "INSERT INTO postmeta (post_id, meta_key, meta_value) VALUES (?, ?, ?)", postID, key, value)
	case err == nil:
		_, err = tx.ExecContext(ctx, "UPDATE postmeta SET meta_value = ? WHERE meta_id = ?", value, metaID)
	}
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return tx.Commit()
}

func (s *Store) ListPostMeta(ctx context.Context, postID int64) ([]domain.PostMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT post_id, COALESCE(meta_key, ''), COALESCE(meta_value, '') FROM postmeta WHERE post_id = ? ORDER BY meta_id",
		postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PostMeta
	for rows.Next() {
		var pm domain.PostMeta
		if err := rows.Scan(&pm.PostID, &pm.Key, &pm.Value); err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}
