/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend is the optional annotation sync layer: a thin HTTP
// client used by the viewer and a Postgres-backed envelope store for the
// self-hosted sync server. Both move the same versioned per-book envelope
// the local store keeps; sync failures are best-effort and never block the
// viewer.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flowbook/internal/storage"
)

// Client is a minimal HTTP client for the annotation sync API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a sync client. baseURL may include a trailing slash;
// it will be normalized.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sync %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// FetchEnvelope retrieves the latest envelope for a book. A 404 from the
// server surfaces as an error; callers treat any fetch error as "keep
// local state".
func (c *Client) FetchEnvelope(ctx context.Context, bookID string) (storage.Envelope, error) {
	var env storage.Envelope
	path := fmt.Sprintf("/api/books/%s/annotations", url.PathEscape(bookID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return storage.Envelope{}, err
	}
	return env, nil
}

// PushEnvelope uploads the full envelope, replacing the server copy.
func (c *Client) PushEnvelope(ctx context.Context, env storage.Envelope) error {
	path := fmt.Sprintf("/api/books/%s/annotations", url.PathEscape(env.BookID))
	return c.doJSON(ctx, http.MethodPut, path, env, nil)
}
