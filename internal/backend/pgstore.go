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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	applog "flowbook/internal/log"
	"flowbook/internal/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PGStore persists annotation envelopes in Postgres, one row per book.
// It satisfies the same store contract as the embedded SQLite store, so
// the sync server reuses the engine's envelope semantics unchanged:
// whole-map replacement writes, and damaged rows degrade to empty.
type PGStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenPG connects to Postgres via the pgx stdlib driver and ensures the
// annotations table exists.
func OpenPG(ctx context.Context, dsn string) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS annotations (
		book_id    TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure annotations table: %w", err)
	}
	return &PGStore{db: db, log: applog.WithComponent("backend")}, nil
}

// Close releases the connection pool.
func (s *PGStore) Close() error { return s.db.Close() }

// LoadEnvelope reads the stored envelope for a book. Missing or corrupt
// rows yield an empty envelope, mirroring the local store's recovery
// behavior.
func (s *PGStore) LoadEnvelope(ctx context.Context, bookID string) storage.Envelope {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM annotations WHERE book_id = $1`, bookID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.NewEnvelope(bookID)
	}
	if err != nil {
		applog.WithBook(s.log, bookID).Warn("load envelope failed, starting empty", slog.Any("err", err))
		return storage.NewEnvelope(bookID)
	}
	var env storage.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		applog.WithBook(s.log, bookID).Warn("stored envelope corrupt, starting empty", slog.Any("err", err))
		return storage.NewEnvelope(bookID)
	}
	if env.Pages == nil {
		env.Pages = map[int][]byte{}
	}
	return env
}

// SaveEnvelope upserts the full envelope for its book.
func (s *PGStore) SaveEnvelope(ctx context.Context, env storage.Envelope) error {
	if env.BookID == "" {
		return errors.New("envelope book id is required")
	}
	if env.UpdatedAt.IsZero() {
		env.UpdatedAt = time.Now()
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO annotations(book_id, payload, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (book_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		env.BookID, payload, env.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save envelope: %w", err)
	}
	return nil
}
