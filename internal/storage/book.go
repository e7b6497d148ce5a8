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
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"flowbook/internal/domain"
)

// BookFileName is the manifest describing a Flowbook document.
const BookFileName = "book.json"

// LoadBook reads a book manifest from path. Unlike the annotation store,
// a broken manifest is a hard error: without a valid book description the
// viewer has nothing to display.
func LoadBook(path string) (*domain.Book, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read book manifest: %w", err)
	}
	var book domain.Book
	if err := json.Unmarshal(b, &book); err != nil {
		return nil, fmt.Errorf("parse book manifest: %w", err)
	}
	if book.ID == "" {
		return nil, errors.New("book manifest has no id")
	}
	return &book, nil
}

// SaveBook writes a book manifest transactionally: to a temp file in the
// same directory, then rename over the target.
func SaveBook(path string, book *domain.Book) error {
	if book == nil {
		return errors.New("nil book")
	}
	data, err := json.MarshalIndent(book, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal book manifest: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}
