/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and a last saved grid state.
package crash

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	applog "gridpager/internal/log"
	"gridpager/internal/pagegrid"
	"gridpager/internal/storage"
	"gridpager/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// ReportDir is where crash reports go; os.TempDir() when empty.
var ReportDir string

// Suffix is appended to the state name for the crash-time autosave.
const Suffix = ".crash"

// Recover captures a panic, logs an error with stacktrace, writes an error
// report file and saves the grid state under name+Suffix when st and g are set.
//
// Usage: defer crash.Recover(st, "main", g)
func Recover(st storage.Store, name string, g *pagegrid.Grid) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	var snap *pagegrid.State
	if g != nil {
		s := g.Snapshot()
		snap = &s
	}
	reportPath, err := writeReport(r, stack, snap)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if st != nil && snap != nil {
		if saved, err := autosave(st, name, *snap); err != nil {
			l.Error("autosave grid state failed", slog.Any("err", err))
		} else {
			l.Info("autosave grid state written", slog.String("name", saved))
		}
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	// Exit with a non-zero code to indicate failure in CLI context.
	exitFn(2)
}

// AutosaveName returns the name the crash-time state is stored under.
func AutosaveName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		n = "autosave"
	}
	if len(n)+len(Suffix) > storage.MaxNameLen {
		n = n[:storage.MaxNameLen-len(Suffix)]
	}
	return n + Suffix
}

func autosave(st storage.Store, name string, s pagegrid.State) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	n := AutosaveName(name)
	if err := st.Save(ctx, n, s); err != nil {
		return n, err
	}
	return n, nil
}

func writeReport(panicVal any, stack []byte, snap *pagegrid.State) (string, error) {
	dir := ReportDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "GridPager Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if snap != nil {
		_, _ = fmt.Fprintf(&buf, "Grid: %s\n", snap)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
