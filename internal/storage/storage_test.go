/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"flowbook/internal/domain"
)

func validPageBlob() []byte {
	return []byte(`{"v":1,"strokes":[{"kind":"pen","color":{"r":0,"g":0,"b":0,"a":255},"width":2,"points":[{"x":1,"y":2},{"x":3,"y":4}]}]}`)
}

func TestEnvelopeJSONRoundTrip(t *testing.T) {
	env := NewEnvelope("bk-9")
	env.Pages[0] = validPageBlob()
	env.Pages[17] = validPageBlob()
	env.UpdatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Envelope
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.BookID != "bk-9" || back.Version != EnvelopeVersion {
		t.Fatalf("header mismatch: %+v", back)
	}
	if len(back.Pages) != 2 {
		t.Fatalf("pages: %d", len(back.Pages))
	}
	if string(back.Pages[17]) != string(env.Pages[17]) {
		t.Fatalf("page blob mismatch")
	}
	if !back.UpdatedAt.Equal(env.UpdatedAt) {
		t.Fatalf("timestamp mismatch: %v", back.UpdatedAt)
	}
}

func TestEnvelopeBadPageKey(t *testing.T) {
	var env Envelope
	err := json.Unmarshal([]byte(`{"version":1,"bookId":"b","pages":{"abc":{}},"updatedAt":""}`), &env)
	if err == nil {
		t.Fatalf("expected error for non-integer page key")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()
	ctx := context.Background()

	env := NewEnvelope("bk-1")
	env.Pages[3] = validPageBlob()
	if err := st.SaveEnvelope(ctx, env); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := st.LoadEnvelope(ctx, "bk-1")
	if got.BookID != "bk-1" || len(got.Pages) != 1 {
		t.Fatalf("load mismatch: %+v", got)
	}
	if string(got.Pages[3]) != string(env.Pages[3]) {
		t.Fatalf("blob mismatch")
	}

	// Whole-map replacement: saving a shrunken map removes the old page
	env2 := NewEnvelope("bk-1")
	if err := st.SaveEnvelope(ctx, env2); err != nil {
		t.Fatalf("save 2: %v", err)
	}
	got = st.LoadEnvelope(ctx, "bk-1")
	if len(got.Pages) != 0 {
		t.Fatalf("old pages survived whole-map replace")
	}
}

func TestStoreMissingBookYieldsEmpty(t *testing.T) {
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()

	env := st.LoadEnvelope(context.Background(), "never-seen")
	if env.BookID != "never-seen" || len(env.Pages) != 0 {
		t.Fatalf("missing book: %+v", env)
	}
}

func TestStoreCorruptPayloadYieldsEmpty(t *testing.T) {
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()
	ctx := context.Background()

	_, err = st.db.ExecContext(ctx,
		`INSERT INTO annotations(book_id, payload, updated_at) VALUES (?, ?, ?)`,
		"bk-bad", []byte("{not json"), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("inject corrupt row: %v", err)
	}

	env := st.LoadEnvelope(ctx, "bk-bad")
	if len(env.Pages) != 0 {
		t.Fatalf("corrupt payload did not degrade to empty")
	}
	// The store stays writable for the book afterwards
	env.Pages[0] = validPageBlob()
	if err := st.SaveEnvelope(ctx, env); err != nil {
		t.Fatalf("save over corrupt row: %v", err)
	}
	if got := st.LoadEnvelope(ctx, "bk-bad"); len(got.Pages) != 1 {
		t.Fatalf("recovery save not readable")
	}
}

func TestStoreSchemaInvalidPayloadYieldsEmpty(t *testing.T) {
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()
	ctx := context.Background()

	// Well-formed JSON that violates the envelope schema (bad stroke kind)
	payload := []byte(`{"version":1,"bookId":"bk-s","pages":{"0":{"v":1,"strokes":[{"kind":"crayon","color":{"r":0,"g":0,"b":0,"a":255},"width":1,"points":[]}]}},"updatedAt":"2026-01-01T00:00:00Z"}`)
	_, err = st.db.ExecContext(ctx,
		`INSERT INTO annotations(book_id, payload, updated_at) VALUES (?, ?, ?)`,
		"bk-s", payload, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("inject row: %v", err)
	}

	env := st.LoadEnvelope(ctx, "bk-s")
	if len(env.Pages) != 0 {
		t.Fatalf("schema-invalid payload did not degrade to empty")
	}
}

func TestStoreDeleteBook(t *testing.T) {
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()
	ctx := context.Background()

	env := NewEnvelope("bk-del")
	env.Pages[0] = validPageBlob()
	if err := st.SaveEnvelope(ctx, env); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.DeleteBook(ctx, "bk-del"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := st.LoadEnvelope(ctx, "bk-del"); len(got.Pages) != 0 {
		t.Fatalf("book survived delete")
	}
}

func TestSaveEnvelopeRequiresBookID(t *testing.T) {
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()
	if err := st.SaveEnvelope(context.Background(), Envelope{}); err == nil {
		t.Fatalf("expected error for empty book id")
	}
}

func TestBookSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, BookFileName)
	book := &domain.Book{
		ID:    "bk-7",
		Title: "Fields",
		Modules: []domain.Module{
			{Title: "Intro", StartPage: 0, EndPage: 1},
		},
		Pages: []domain.Page{
			{Index: 0, WidthPx: 800, HeightPx: 1200},
			{Index: 1, WidthPx: 800, HeightPx: 1200, Markers: []domain.Marker{
				{ID: "m1", Kind: domain.MarkerAudio, XPct: 50, YPct: 25, MediaRef: "a.mp3"},
			}},
		},
	}
	if err := SaveBook(path, book); err != nil {
		t.Fatalf("save book: %v", err)
	}
	got, err := LoadBook(path)
	if err != nil {
		t.Fatalf("load book: %v", err)
	}
	if got.ID != "bk-7" || got.PageCount() != 2 {
		t.Fatalf("book mismatch: %+v", got)
	}
	if got.Pages[1].Markers[0].Kind != domain.MarkerAudio {
		t.Fatalf("marker lost")
	}
}

func TestBookLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadBook(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadBook(bad); err == nil {
		t.Fatalf("expected error for corrupt book file")
	}
	noID := filepath.Join(dir, "noid.json")
	if err := os.WriteFile(noID, []byte(`{"title":"x"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadBook(noID); err == nil {
		t.Fatalf("expected error for book without id")
	}
}
