package compendium

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	_ "modernc.org/sqlite"
)

// Cache is the on-disk compendium store, filled after a remote fetch so
// later runs work offline.
type Cache struct {
	sql *sql.DB
}

// DefaultCachePath returns $HOME/.cache/fsf/compendium.db.
func DefaultCachePath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "fsf", "compendium.db"), nil
}

func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS compendium_items (
  dsid       TEXT NOT NULL,
  item_id    TEXT NOT NULL DEFAULT '',
  name       TEXT NOT NULL,
  type       TEXT NOT NULL,
  category   TEXT NOT NULL DEFAULT '',
  raw        BLOB NOT NULL,
  fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (dsid, item_id)
);
CREATE INDEX IF NOT EXISTS idx_compendium_type ON compendium_items(type);
	`); err != nil {
		return nil, err
	}
	return &Cache{sql: db}, nil
}

func (c *Cache) Close() error {
	if c == nil || c.sql == nil {
		return nil
	}
	return c.sql.Close()
}

// Store upserts entries into the cache.
func (c *Cache) Store(ctx context.Context, entries []*Entry) error {
	tx, err := c.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, e := range entries {
		_, err = tx.ExecContext(ctx, `
INSERT INTO compendium_items(dsid, item_id, name, type, category, raw, fetched_at)
VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(dsid, item_id) DO UPDATE SET
  name = excluded.name, type = excluded.type, category = excluded.category,
  raw = excluded.raw, fetched_at = CURRENT_TIMESTAMP`,
			e.DSID, e.ID, e.Name, e.Type, e.Category, e.Raw)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load reads every cached entry into a new catalog. Entries come back in
// dsid order so the duplicate-preference policy applies the same way on
// every run.
func (c *Cache) Load(ctx context.Context) (*Catalog, error) {
	rows, err := c.sql.QueryContext(ctx, "SELECT raw FROM compendium_items ORDER BY dsid, item_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	catalog := NewCatalog()
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		if e := NewEntry(raw); e != nil {
			catalog.Add(e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Count returns the number of cached items.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var n int
	err := c.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM compendium_items").Scan(&n)
	return n, err
}

// CountByType returns per-type item counts for the stats command.
func (c *Cache) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := c.sql.QueryContext(ctx, "SELECT type, COUNT(*) FROM compendium_items GROUP BY type ORDER BY type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, rows.Err()
}
