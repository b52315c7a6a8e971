/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "gridpager/internal/log"
	"gridpager/internal/pagegrid"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// LayoutFormatVersion is the current layout document format.
const LayoutFormatVersion = 1

// ErrInvalidDocument is returned when a layout document does not match the schema.
var ErrInvalidDocument = errors.New("invalid layout document")

//go:embed layout.schema.json
var layoutSchema []byte

// LayoutDocument is the on-disk form of a single exported grid state.
type LayoutDocument struct {
	FormatVersion int            `json:"format_version"`
	Name          string         `json:"name"`
	SavedAt       time.Time      `json:"saved_at"`
	State         pagegrid.State `json:"state"`
}

// LayoutSchema returns the embedded JSON schema for layout documents.
func LayoutSchema() []byte { return append([]byte(nil), layoutSchema...) }

// ValidateLayoutDocument checks raw JSON against the layout schema.
func ValidateLayoutDocument(data []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(layoutSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}
	return nil
}

// WriteLayoutDocument writes s under name to path as indented JSON.
// The file is written to a temp sibling first and renamed over the target.
func WriteLayoutDocument(path, name string, s pagegrid.State) error {
	n, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	doc := LayoutDocument{FormatVersion: LayoutFormatVersion, Name: n, SavedAt: time.Now().UTC(), State: s}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure layout dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp layout: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace layout: %w", rerr)
	}
	applog.WithComponent("storage").Debug("layout written", slog.String("path", path), slog.String("name", n))
	return nil
}

// ReadLayoutDocument reads and validates a layout document.
func ReadLayoutDocument(path string) (LayoutDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LayoutDocument{}, fmt.Errorf("read layout: %w", err)
	}
	if err := ValidateLayoutDocument(data); err != nil {
		return LayoutDocument{}, fmt.Errorf("%s: %w", path, err)
	}
	var doc LayoutDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return LayoutDocument{}, fmt.Errorf("parse layout: %w", err)
	}
	if doc.FormatVersion > LayoutFormatVersion {
		return LayoutDocument{}, fmt.Errorf("%w: format_version %d is newer than supported %d", ErrInvalidDocument, doc.FormatVersion, LayoutFormatVersion)
	}
	if err := doc.State.Validate(); err != nil {
		return LayoutDocument{}, err
	}
	return doc, nil
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
	return f.Sync()
}
