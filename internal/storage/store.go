/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage persists per-book annotation envelopes in an embedded
// SQLite database, one row per book. A missing or damaged row always
// degrades to an empty envelope so the viewer starts cleanly on a fresh or
// corrupted device store.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	applog "flowbook/internal/log"
	"flowbook/internal/version"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// StoreFileName is the annotation database inside the data directory.
	StoreFileName = "annotations.sqlite"

	// schemaVersion tracks the local SQLite schema. Bump on breaking
	// schema changes and add a migration in ensureSchema.
	schemaVersion = 1
)

//go:embed annotations.schema.json
var envelopeSchema []byte

// Store is the durable per-book annotation store.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// DefaultDir returns the per-user data directory for annotation storage.
func DefaultDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Flowbook")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Flowbook")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".local", "share", "flowbook")
	}
	if base == "" {
		return "", errors.New("cannot resolve data directory")
	}
	return base, nil
}

// Open ensures the annotation database exists under dir, opens it, enables
// WAL mode, and ensures the meta/version/annotations tables exist.
func Open(dir string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create data dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dir, StoreFileName)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("annotation store ready", slog.String("path", path))
	return &Store{db: db, log: applog.WithComponent("storage")}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id     INTEGER PRIMARY KEY CHECK(id=1),
			schema INTEGER NOT NULL,
			app    TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS annotations (
			book_id    TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO version(id, schema, app) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET schema=excluded.schema, app=excluded.app`,
		schemaVersion, version.String())
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// LoadEnvelope reads the stored envelope for a book. A missing row, a
// payload that fails to parse, or a payload that fails schema validation
// yields an empty envelope and never an error; the problem is logged and
// the viewer proceeds with no annotations for that book.
func (s *Store) LoadEnvelope(ctx context.Context, bookID string) Envelope {
	l := applog.WithBook(s.log, bookID)
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM annotations WHERE book_id = ?`, bookID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return NewEnvelope(bookID)
	}
	if err != nil {
		l.Warn("load annotations failed, starting empty", slog.Any("err", err))
		return NewEnvelope(bookID)
	}
	if err := validateEnvelope(payload); err != nil {
		l.Warn("stored annotations invalid, starting empty", slog.Any("err", err))
		return NewEnvelope(bookID)
	}
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		l.Warn("stored annotations corrupt, starting empty", slog.Any("err", err))
		return NewEnvelope(bookID)
	}
	if env.Pages == nil {
		env.Pages = map[int][]byte{}
	}
	return env
}

// SaveEnvelope replaces the stored payload for the envelope's book. The
// whole page map is written each time.
func (s *Store) SaveEnvelope(ctx context.Context, env Envelope) error {
	if strings.TrimSpace(env.BookID) == "" {
		return errors.New("envelope book id is required")
	}
	env.Version = EnvelopeVersion
	if env.UpdatedAt.IsZero() {
		env.UpdatedAt = time.Now()
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO annotations(book_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(book_id) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
		env.BookID, payload, env.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save envelope: %w", err)
	}
	return nil
}

// DeleteBook removes the stored envelope for a book.
func (s *Store) DeleteBook(ctx context.Context, bookID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM annotations WHERE book_id = ?`, bookID)
	return err
}

// validateEnvelope checks the payload against the embedded JSON schema.
func validateEnvelope(payload []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(envelopeSchema)
	docLoader := gojsonschema.NewBytesLoader(payload)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return err
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("envelope schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}
