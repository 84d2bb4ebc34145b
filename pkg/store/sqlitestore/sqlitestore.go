package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/konsumhq/konsum/pkg/store"
)

// SQLiteStore persists categories, meters, notes and values in a single
// sqlite database file. Write atomicity per key comes from sqlite itself;
// the gateway layers no locking on top.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// sqlite allows one writer at a time; a single pooled connection keeps
	// concurrent requests from tripping over SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return nil, errors.Wrap(err, "failed to enable WAL")
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}

	if err := migrate(db); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			unit TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS details (
			category TEXT NOT NULL,
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			attributes TEXT NOT NULL DEFAULT '{}',
			PRIMARY KEY (category, kind, id),
			FOREIGN KEY(category) REFERENCES categories(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS readings (
			category TEXT NOT NULL,
			time REAL NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (category, time),
			FOREIGN KEY(category) REFERENCES categories(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_readings_category_time ON readings(category, time);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]store.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, description, unit FROM categories ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	defer rows.Close()

	categories := []store.Category{}
	for rows.Next() {
		var c store.Category
		if err := rows.Scan(&c.ID, &c.Description, &c.Unit); err != nil {
			return nil, errors.Wrap(err, "failed to scan category")
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*store.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, description, unit FROM categories WHERE id = ?`, id)

	var c store.Category
	if err := row.Scan(&c.ID, &c.Description, &c.Unit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get category")
	}

	return &c, nil
}

func (s *SQLiteStore) PutCategory(ctx context.Context, category store.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, description, unit) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET description = excluded.description, unit = excluded.unit`,
		category.ID, category.Description, category.Unit,
	)
	return errors.Wrap(err, "failed to put category")
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete category")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get affected rows")
	}
	if n == 0 {
		return store.ErrNotFound
	}

	return nil
}

func (s *SQLiteStore) ListDetails(ctx context.Context, categoryID string, kind store.DetailKind) ([]store.Detail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, attributes FROM details WHERE category = ? AND kind = ? ORDER BY id`,
		categoryID, string(kind),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %ss", kind)
	}
	defer rows.Close()

	details := []store.Detail{}
	for rows.Next() {
		var d store.Detail
		var attributes string
		if err := rows.Scan(&d.ID, &attributes); err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s", kind)
		}
		if err := json.Unmarshal([]byte(attributes), &d.Attributes); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s attributes", kind)
		}
		details = append(details, d)
	}

	return details, rows.Err()
}

func (s *SQLiteStore) PutDetail(ctx context.Context, categoryID string, kind store.DetailKind, detail store.Detail) error {
	attributes, err := json.Marshal(detail.Attributes)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s attributes", kind)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO details (category, kind, id, attributes) VALUES (?, ?, ?, ?)
		 ON CONFLICT(category, kind, id) DO UPDATE SET attributes = excluded.attributes`,
		categoryID, string(kind), detail.ID, string(attributes),
	)
	return errors.Wrapf(err, "failed to put %s", kind)
}

func (s *SQLiteStore) WriteValue(ctx context.Context, categoryID string, value string, time float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readings (category, time, value) VALUES (?, ?, ?)
		 ON CONFLICT(category, time) DO UPDATE SET value = excluded.value`,
		categoryID, time, value,
	)
	return errors.Wrap(err, "failed to write value")
}

func (s *SQLiteStore) DeleteValue(ctx context.Context, categoryID string, time float64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM readings WHERE category = ? AND time = ?`, categoryID, time)
	if err != nil {
		return errors.Wrap(err, "failed to delete value")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get affected rows")
	}
	if n == 0 {
		return store.ErrNotFound
	}

	return nil
}

func (s *SQLiteStore) EachValue(ctx context.Context, categoryID string, opts store.ListOptions, fn func(store.Value) error) error {
	order := "ASC"
	if opts.Reverse {
		order = "DESC"
	}

	limit := opts.Limit
	if limit < 0 {
		limit = -1 // sqlite: no limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT value, time FROM readings WHERE category = ? ORDER BY time `+order+` LIMIT ?`,
		categoryID, limit,
	)
	if err != nil {
		return errors.Wrap(err, "failed to query values")
	}
	defer rows.Close()

	for rows.Next() {
		var v store.Value
		if err := rows.Scan(&v.Value, &v.Time); err != nil {
			return errors.Wrap(err, "failed to scan value")
		}
		if err := fn(v); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
