/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestClient_EventAndUploadCrash(t *testing.T) {
	var mu sync.Mutex
	var events [][]byte
	var crashes [][]byte

	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		mu.Lock()
		events = append(events, append([]byte(nil), b...))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		mu.Lock()
		crashes = append(crashes, append([]byte(nil), b...))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second}
	c := New(cfg)
	defer c.Close()

	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}

	c.Event("book_opened", map[string]any{"pages": 12})
	c.Flush(context.Background())

	// Wait briefly for loop to send
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	ecount := len(events)
	mu.Unlock()
	if ecount == 0 {
		t.Fatalf("expected at least one event to be sent")
	}

	var m map[string]any
	if err := json.Unmarshal(events[0], &m); err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m["name"] != "book_opened" {
		t.Fatalf("event name mismatch: %v", m["name"])
	}
	if _, ok := m["ts"].(string); !ok {
		t.Fatalf("missing ts field")
	}
	if m["pages"] != float64(12) {
		t.Fatalf("pages prop mismatch: %v", m["pages"])
	}

	c.UploadCrash([]byte("report body"))
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	ccount := len(crashes)
	mu.Unlock()
	if ccount == 0 {
		t.Fatalf("expected crash report to be uploaded")
	}
	if string(crashes[0]) != "report body" {
		t.Fatalf("crash body mismatch: %q", crashes[0])
	}
}

func TestClient_DisabledDropsEverything(t *testing.T) {
	var hits int32
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
	}))
	defer srv.Close()

	// Opt-in false: nothing may leave the process.
	c := New(Config{OptIn: false, EventsURL: srv.URL, CrashURL: srv.URL, Timeout: time.Second})
	defer c.Close()

	if c.Enabled() {
		t.Fatalf("expected client to be disabled")
	}
	c.Event("page_viewed", map[string]any{"page": 3})
	c.UploadCrash([]byte("should not upload"))
	c.Flush(context.Background())
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	got := hits
	mu.Unlock()
	if got != 0 {
		t.Fatalf("expected no requests, got %d", got)
	}
}

func TestClient_OptInWithoutURLSendsNothing(t *testing.T) {
	c := New(Config{OptIn: true, Timeout: time.Second})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("opt-in without an endpoint must stay disabled")
	}
	// Must not panic or block.
	c.Event("annotation_saved", map[string]any{"strokes": 2})
	c.Flush(context.Background())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("FBK_TELEMETRY_OPT_IN", "yes")
	t.Setenv("FBK_TELEMETRY_URL", " https://example.com/t ")
	t.Setenv("FBK_CRASH_UPLOAD_URL", "https://example.com/c")
	t.Setenv("FBK_TELEMETRY_TIMEOUT_MS", "250")
	t.Setenv("FBK_TELEMETRY_DEBUG", "")

	cfg := FromEnv()
	if !cfg.OptIn {
		t.Fatalf("expected opt-in")
	}
	if cfg.EventsURL != "https://example.com/t" {
		t.Fatalf("events url: %q", cfg.EventsURL)
	}
	if cfg.CrashURL != "https://example.com/c" {
		t.Fatalf("crash url: %q", cfg.CrashURL)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout: %v", cfg.Timeout)
	}
	if cfg.DebugLogging {
		t.Fatalf("debug should be off")
	}
}
