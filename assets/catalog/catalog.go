// Package catalog keeps scanned asset descriptors in SQLite so a folder can
// be shown again without listing and probing it.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alexballas/xmediagrid/assets"
)

var ErrNotFound = errors.New("library not in catalog")

// Library is one scanned folder.
type Library struct {
	URI       string
	ScannedAt time.Time
	Count     int
}

// Catalog stores asset descriptors per library. Safe for concurrent use.
type Catalog struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the catalog at dbPath. ":memory:" keeps it in memory.
func Open(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to :memory: gets its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS libraries (
		uri TEXT PRIMARY KEY,
		scanned_at DATETIME NOT NULL,
		item_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS assets (
		library TEXT NOT NULL REFERENCES libraries(uri) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (library, id)
	);

	CREATE INDEX IF NOT EXISTS idx_assets_position ON assets(library, position);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}

// Replace stores items as the full content of library, in order.
// Previous content is dropped.
func (c *Catalog) Replace(ctx context.Context, library string, items []assets.Asset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE library = ?`, library); err != nil {
		return fmt.Errorf("clear library: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO libraries (uri, scanned_at, item_count) VALUES (?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET scanned_at = excluded.scanned_at, item_count = excluded.item_count
	`, library, time.Now().UTC(), len(items)); err != nil {
		return fmt.Errorf("save library: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO assets (library, position, id, kind, name, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, a := range items {
		if _, err := stmt.ExecContext(ctx, library, i, string(a.ID), a.Kind.String(), a.Name, a.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("save asset %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// Assets returns the stored items of library in their saved order.
func (c *Catalog) Assets(ctx context.Context, library string) ([]assets.Asset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var count int
	err := c.db.QueryRowContext(ctx, `SELECT item_count FROM libraries WHERE uri = ?`, library).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, library)
	}
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, kind, name, duration_ms FROM assets
		WHERE library = ?
		ORDER BY position
	`, library)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]assets.Asset, 0, count)
	for rows.Next() {
		var (
			a          assets.Asset
			id, kind   string
			durationMS int64
		)
		if err := rows.Scan(&id, &kind, &a.Name, &durationMS); err != nil {
			return nil, err
		}
		a.ID = assets.ID(id)
		a.Kind = assets.ParseMediaKind(kind)
		a.Duration = time.Duration(durationMS) * time.Millisecond
		items = append(items, a)
	}
	return items, rows.Err()
}

// Library returns the record of one scanned library.
func (c *Catalog) Library(ctx context.Context, library string) (Library, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := Library{URI: library}
	err := c.db.QueryRowContext(ctx, `SELECT scanned_at, item_count FROM libraries WHERE uri = ?`, library).Scan(&l.ScannedAt, &l.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return Library{}, fmt.Errorf("%w: %s", ErrNotFound, library)
	}
	return l, err
}

// Libraries lists every scanned library, most recent first.
func (c *Catalog) Libraries(ctx context.Context) ([]Library, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx, `
		SELECT uri, scanned_at, item_count FROM libraries ORDER BY scanned_at DESC, uri
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var libs []Library
	for rows.Next() {
		var l Library
		if err := rows.Scan(&l.URI, &l.ScannedAt, &l.Count); err != nil {
			return nil, err
		}
		libs = append(libs, l)
	}
	return libs, rows.Err()
}

// Forget removes library and its items.
func (c *Catalog) Forget(ctx context.Context, library string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE library = ?`, library); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM libraries WHERE uri = ?`, library)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, library)
	}
	return tx.Commit()
}
