/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	applog "gridpager/internal/log"
	"gridpager/internal/pagegrid"
	"gridpager/internal/storage"
)

// PGStore keeps named grid states in PostgreSQL.
type PGStore struct {
	db  *sql.DB
	log *slog.Logger
}

var _ storage.Store = (*PGStore)(nil)

// OpenPostgres opens the database at dsn and returns a migrated store.
func OpenPostgres(ctx context.Context, dsn string) (*PGStore, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PGStore{db: db, log: applog.WithComponent("backend")}, nil
}

func (s *PGStore) Save(ctx context.Context, name string, st pagegrid.State) error {
	n, err := storage.NormalizeName(name)
	if err != nil {
		return err
	}
	if err := st.Validate(); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO grid_states
		(name, x, y, width, height, total_entries, total_pages, entries_per_page, active_page, dirty, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (name) DO UPDATE SET
			x=EXCLUDED.x, y=EXCLUDED.y, width=EXCLUDED.width, height=EXCLUDED.height,
			total_entries=EXCLUDED.total_entries, total_pages=EXCLUDED.total_pages,
			entries_per_page=EXCLUDED.entries_per_page, active_page=EXCLUDED.active_page,
			dirty=EXCLUDED.dirty, updated_at=now()`,
		n, st.X, st.Y, st.Width, st.Height, st.TotalEntries, st.TotalPages, st.EntriesPerPage, st.ActivePage, st.Dirty)
	if err != nil {
		return fmt.Errorf("save state %q: %w", n, err)
	}
	s.log.Debug("state saved", slog.String("name", n), applog.GridAttr("grid", st))
	return nil
}

func (s *PGStore) Load(ctx context.Context, name string) (pagegrid.State, error) {
	n, err := storage.NormalizeName(name)
	if err != nil {
		return pagegrid.State{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT name, x, y, width, height, total_entries, total_pages,
		entries_per_page, active_page, dirty, updated_at FROM grid_states WHERE name=$1`, n)
	info, err := scanState(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return pagegrid.State{}, fmt.Errorf("%w: %q", storage.ErrNotFound, n)
	case err != nil:
		return pagegrid.State{}, fmt.Errorf("load state %q: %w", n, err)
	}
	return info.State, nil
}

func (s *PGStore) List(ctx context.Context) ([]storage.StateInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, x, y, width, height, total_entries, total_pages,
		entries_per_page, active_page, dirty, updated_at FROM grid_states ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	defer rows.Close()
	var out []storage.StateInfo
	for rows.Next() {
		info, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, name string) error {
	n, err := storage.NormalizeName(name)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM grid_states WHERE name=$1`, n)
	if err != nil {
		return fmt.Errorf("delete state %q: %w", n, err)
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return fmt.Errorf("%w: %q", storage.ErrNotFound, n)
	}
	return nil
}

func (s *PGStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(r rowScanner) (storage.StateInfo, error) {
	var (
		info    storage.StateInfo
		updated time.Time
	)
	st := &info.State
	if err := r.Scan(&info.Name, &st.X, &st.Y, &st.Width, &st.Height, &st.TotalEntries, &st.TotalPages,
		&st.EntriesPerPage, &st.ActivePage, &st.Dirty, &updated); err != nil {
		return storage.StateInfo{}, err
	}
	info.UpdatedAt = updated.UTC()
	return info, nil
}
