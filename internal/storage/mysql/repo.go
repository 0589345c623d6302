package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"

	"rental_sync/internal/domain"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// Repo stores post meta in a WordPress postmeta table.
type Repo struct {
	db    *sql.DB
	table string

	selectID string
	update   string
	insert   string
	list     string
}

var _ domain.PostMetaRepository = (*Repo)(nil)

func New(db *sql.DB, table string) (*Repo, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid postmeta table name %q", table)
	}
	return &Repo{
		db:       db,
		table:    table,
		selectID: fmt.Sprintf(selectMetaIDSQL, table),
		update:   fmt.Sprintf(updateMetaSQL, table),
		insert:   fmt.Sprintf(insertMetaSQL, table),
		list:     fmt.Sprintf(listMetaSQL, table),
	}, nil
}

// Open connects and pings with the pool settings used by both entry points.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the table when it does not exist (dev databases).
func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(createMetaTableSQL, r.table))
	return err
}

// UpsertPostMeta updates the first row with (postID, key) or inserts one,
// inside a single transaction.
func (r *Repo) UpsertPostMeta(ctx context.Context, postID int64, key, value string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var metaID int64
	err = tx.QueryRowContext(ctx, r.selectID, postID, key).Scan(&metaID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, r.insert, postID, key, value); err != nil {
			return fmt.Errorf("insert %s: %w", key, err)
		}
	case err != nil:
		return fmt.Errorf("select %s: %w", key, err)
	default:
		if _, err := tx.ExecContext(ctx, r.update, value, metaID); err != nil {
			return fmt.Errorf("update %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (r *Repo) ListPostMeta(ctx context.Context, postID int64) ([]domain.PostMeta, error) {
	rows, err := r.db.QueryContext(ctx, r.list, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PostMeta
	for rows.Next() {
		var (
			pm    domain.PostMeta
			key   sql.NullString
			value sql.NullString
		)
		if err := rows.Scan(&pm.PostID, &key, &value); err != nil {
			return nil, err
		}
		pm.Key, pm.Value = key.String, value.String
		out = append(out, pm)
	}
	return out, rows.Err()
}
