/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gridpager/internal/version"
)

// isolate points the config dir at a temp dir and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GPR_CONFIG_DIR", dir)
	for _, k := range []string{"GPR_STORE_DRIVER", "GPR_SQLITE_PATH", "GPR_PG_DSN", "GPR_LOG_FILE", "GPR_LOG_FORMAT", "GPR_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestVersionAndUsage(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "version")
	if code != 0 || strings.TrimSpace(out) != version.String() {
		t.Fatalf("version: code=%d out=%q", code, out)
	}
	code, out, _ = runCLI(t)
	if code != 0 || !strings.Contains(out, "Usage:") {
		t.Fatalf("usage: code=%d out=%q", code, out)
	}
	code, _, errOut := runCLI(t, "bogus")
	if code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("unknown command: code=%d err=%q", code, errOut)
	}
}

func TestLayoutCommand(t *testing.T) {
	isolate(t)
	code, out, errOut := runCLI(t, "layout", "0", "0", "100", "100", "10", "2", "1")
	if code != 0 {
		t.Fatalf("layout failed: %d %s", code, errOut)
	}
	for _, want := range []string{"per_page=5", "box_side=33 per_row=3 per_column=3", "page 1:", "entry 9 at (33,33) side 33"} {
		if !strings.Contains(out, want) {
			t.Fatalf("layout output missing %q:\n%s", want, out)
		}
	}
	if code, _, _ := runCLI(t, "layout", "0", "0", "100", "100", "10", "2", "5"); code != 1 {
		t.Fatalf("out of range page: code=%d", code)
	}
	if code, _, _ := runCLI(t, "layout", "0", "0", "x", "100", "10", "2"); code != 2 {
		t.Fatalf("non-integer arg: code=%d", code)
	}
	if code, _, _ := runCLI(t, "layout", "0", "0", "0", "100", "10", "2"); code != 1 {
		t.Fatalf("zero width: code=%d", code)
	}
}

func TestLocateCommand(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "locate", "0", "0", "100", "100", "10", "2", "1", "40", "40")
	if code != 0 || strings.TrimSpace(out) != "entry 9" {
		t.Fatalf("locate: code=%d out=%q", code, out)
	}
	code, out, _ = runCLI(t, "locate", "0", "0", "100", "100", "10", "2", "1", "70", "40")
	if code != 1 || strings.TrimSpace(out) != "no entry" {
		t.Fatalf("locate empty slot: code=%d out=%q", code, out)
	}
	if code, _, _ := runCLI(t, "locate", "0", "0", "100", "100", "10", "2"); code != 2 {
		t.Fatalf("missing args: code=%d", code)
	}
}

func TestExportCommand(t *testing.T) {
	isolate(t)
	out := filepath.Join(t.TempDir(), "png")
	code, _, errOut := runCLI(t, "export", "png", out, "0", "0", "100", "100", "10", "2")
	if code != 0 {
		t.Fatalf("export png failed: %s", errOut)
	}
	files, _ := os.ReadDir(out)
	if len(files) != 2 {
		t.Fatalf("expected 2 png files, got %d", len(files))
	}
	pdf := filepath.Join(t.TempDir(), "layout.pdf")
	if code, _, errOut := runCLI(t, "export", "pdf", pdf, "0", "0", "100", "100", "10", "2"); code != 0 {
		t.Fatalf("export pdf failed: %s", errOut)
	}
	if _, err := os.Stat(pdf); err != nil {
		t.Fatalf("pdf missing: %v", err)
	}
	if code, _, _ := runCLI(t, "export", "svg", out, "0", "0", "100", "100", "10", "2"); code != 2 {
		t.Fatalf("unknown format: code=%d", code)
	}
}

func TestStateCommands(t *testing.T) {
	dir := isolate(t)
	code, _, errOut := runCLI(t, "state", "save", "main", "0", "0", "100", "100", "10", "2", "1")
	if code != 0 {
		t.Fatalf("state save: %s", errOut)
	}
	if _, err := os.Stat(filepath.Join(dir, "states.sqlite")); err != nil {
		t.Fatalf("default sqlite path not used: %v", err)
	}
	code, out, _ := runCLI(t, "state", "load", "main")
	if code != 0 || !strings.Contains(out, "active=1") || !strings.Contains(out, "box_side=33") {
		t.Fatalf("state load: code=%d out=%q", code, out)
	}

	doc := filepath.Join(t.TempDir(), "main.json")
	if code, _, errOut := runCLI(t, "state", "export", "main", doc); code != 0 {
		t.Fatalf("state export: %s", errOut)
	}
	if code, _, errOut := runCLI(t, "state", "import", doc, "copy"); code != 0 {
		t.Fatalf("state import: %s", errOut)
	}
	code, out, _ = runCLI(t, "state", "list")
	if code != 0 || !strings.Contains(out, "copy\t") || !strings.Contains(out, "main\t") {
		t.Fatalf("state list: code=%d out=%q", code, out)
	}
	if code, _, _ := runCLI(t, "state", "delete", "main"); code != 0 {
		t.Fatalf("state delete failed")
	}
	if code, _, errOut := runCLI(t, "state", "load", "main"); code != 1 || !strings.Contains(errOut, "not found") {
		t.Fatalf("load deleted: code=%d err=%q", code, errOut)
	}
	if code, _, _ := runCLI(t, "state", "frobnicate"); code != 2 {
		t.Fatalf("unknown state command: code=%d", code)
	}
}
