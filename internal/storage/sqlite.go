/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "gridpager/internal/log"
	"gridpager/internal/pagegrid"
	"gridpager/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the local SQLite schema.
// Bump this when you perform breaking schema changes and add migrations.
//
//	1: grid_states without the dirty flag
//	2: dirty column and updated_at index
const schemaVersion = 2

// SQLiteStore is a Store backed by a single SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the state database at path, enables
// WAL mode and brings the schema up to date.
func OpenSQLite(path string) (*SQLiteStore, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "sqlite_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create db dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// embedded usage: one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureStateSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("state store ready")
	return &SQLiteStore{db: db, path: path, log: applog.WithComponent("storage")}, nil
}

func ensureVersion(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS version (
		id          INTEGER PRIMARY KEY CHECK(id=1),
		schema      INTEGER NOT NULL,
		app         TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// fresh database: ensureStateSchema creates the current layout directly
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureStateSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS grid_states (
			name             TEXT PRIMARY KEY,
			x                INTEGER NOT NULL,
			y                INTEGER NOT NULL,
			width            INTEGER NOT NULL,
			height           INTEGER NOT NULL,
			total_entries    INTEGER NOT NULL,
			total_pages      INTEGER NOT NULL,
			entries_per_page INTEGER NOT NULL,
			active_page      INTEGER NOT NULL,
			dirty            INTEGER NOT NULL DEFAULT 0,
			updated_at       TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_grid_states_updated ON grid_states(updated_at);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	// never downgrade
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`ALTER TABLE grid_states ADD COLUMN dirty INTEGER NOT NULL DEFAULT 0;`,
				`CREATE INDEX IF NOT EXISTS idx_grid_states_updated ON grid_states(updated_at);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Save(ctx context.Context, name string, st pagegrid.State) error {
	n, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if err := st.Validate(); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO grid_states
		(name, x, y, width, height, total_entries, total_pages, entries_per_page, active_page, dirty, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			x=excluded.x, y=excluded.y, width=excluded.width, height=excluded.height,
			total_entries=excluded.total_entries, total_pages=excluded.total_pages,
			entries_per_page=excluded.entries_per_page, active_page=excluded.active_page,
			dirty=excluded.dirty, updated_at=excluded.updated_at`,
		n, st.X, st.Y, st.Width, st.Height, st.TotalEntries, st.TotalPages, st.EntriesPerPage, st.ActivePage,
		boolToInt(st.Dirty), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save state %q: %w", n, err)
	}
	s.log.Debug("state saved", slog.String("name", n), applog.GridAttr("grid", st))
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (pagegrid.State, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return pagegrid.State{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT name, x, y, width, height, total_entries, total_pages,
		entries_per_page, active_page, dirty, updated_at FROM grid_states WHERE name=?`, n)
	info, err := scanState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pagegrid.State{}, fmt.Errorf("%w: %q", ErrNotFound, n)
	}
	if err != nil {
		return pagegrid.State{}, fmt.Errorf("load state %q: %w", n, err)
	}
	return info.State, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]StateInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, x, y, width, height, total_entries, total_pages,
		entries_per_page, active_page, dirty, updated_at FROM grid_states ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	defer rows.Close()
	var out []StateInfo
	for rows.Next() {
		info, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	n, err := NormalizeName(name)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM grid_states WHERE name=?`, n)
	if err != nil {
		return fmt.Errorf("delete state %q: %w", n, err)
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, n)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(r rowScanner) (StateInfo, error) {
	var (
		info    StateInfo
		dirty   int
		updated string
	)
	st := &info.State
	if err := r.Scan(&info.Name, &st.X, &st.Y, &st.Width, &st.Height, &st.TotalEntries, &st.TotalPages,
		&st.EntriesPerPage, &st.ActivePage, &dirty, &updated); err != nil {
		return StateInfo{}, err
	}
	st.Dirty = dirty != 0
	if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		info.UpdatedAt = ts
	}
	return info, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
