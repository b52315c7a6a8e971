/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gridpager/internal/backend"
	"gridpager/internal/config"
	"gridpager/internal/crash"
	"gridpager/internal/export"
	applog "gridpager/internal/log"
	"gridpager/internal/pagegrid"
	"gridpager/internal/storage"
	"gridpager/internal/ui"
	"gridpager/internal/version"
)

const gridArgs = "<x> <y> <w> <h> <entries> <pages>"

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "GridPager: paged grid layout tool")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  gridpager version|-v|--version                      Show version")
	_, _ = fmt.Fprintln(w, "  gridpager layout "+gridArgs+" [page]      Print geometry and the boxes of a page")
	_, _ = fmt.Fprintln(w, "  gridpager locate "+gridArgs+" <page> <px> <py>  Map a point to an entry")
	_, _ = fmt.Fprintln(w, "  gridpager export pdf|png <out> "+gridArgs+"  Write layout sheets")
	_, _ = fmt.Fprintln(w, "  gridpager state save <name> "+gridArgs+" [page]  Store a grid state")
	_, _ = fmt.Fprintln(w, "  gridpager state load|delete <name>                   Show or remove a stored state")
	_, _ = fmt.Fprintln(w, "  gridpager state list                                 List stored states")
	_, _ = fmt.Fprintln(w, "  gridpager state export <name> <file>                 Write a stored state as layout document")
	_, _ = fmt.Fprintln(w, "  gridpager state import <file> [name]                 Store a layout document")
	_, _ = fmt.Fprintln(w, "  gridpager ui [name]                                  Launch desktop UI (build with -tags fyne)")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errUsage marks argument errors; run prints usage and exits with 2.
var errUsage = errors.New("usage")

func run(args []string, stdout, stderr io.Writer) int {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Console:   stderr,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", cfgErr))
	}
	if dir, err := config.ConfigDir(); err == nil {
		crash.ReportDir = filepath.Join(dir, "crash")
	}
	l.Debug("start", slog.Int("args", len(args)))

	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	case "layout":
		err = cmdLayout(args[1:], stdout)
	case "locate":
		var found bool
		found, err = cmdLocate(args[1:], stdout)
		if err == nil && !found {
			return 1
		}
	case "export":
		err = cmdExport(args[1:], stdout)
	case "state":
		err = withStore(cfg, func(ctx context.Context, st storage.Store) error {
			return cmdState(ctx, st, args[1:], stdout)
		})
	case "ui":
		name := ""
		if len(args) > 1 {
			name = args[1]
		}
		err = runUI(cfg, name)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		usage(stderr)
		return 2
	default:
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
}

// parseGrid builds a grid from the six positional grid arguments.
func parseGrid(args []string) (*pagegrid.Grid, error) {
	if len(args) < 6 {
		return nil, fmt.Errorf("%w: expected %s", errUsage, gridArgs)
	}
	v, err := parseInts(args[:6])
	if err != nil {
		return nil, err
	}
	return pagegrid.New(v[0], v[1], v[2], v[3], v[4], v[5], pagegrid.WithLogger(applog.WithComponent("pagegrid")))
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", errUsage, a)
		}
		out[i] = n
	}
	return out, nil
}

// optPage reads an optional trailing page argument.
func optPage(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	v, err := parseInts(args[:1])
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func cmdLayout(args []string, w io.Writer) error {
	g, err := parseGrid(args)
	if err != nil {
		return err
	}
	page, err := optPage(args[6:])
	if err != nil {
		return err
	}
	if page < 0 || page >= g.TotalPages() {
		return fmt.Errorf("page %d out of range [0,%d)", page, g.TotalPages())
	}
	g.SetActivePage(page)
	geo := g.Geometry()
	_, _ = fmt.Fprintf(w, "entries=%d pages=%d per_page=%d\n", g.TotalEntries(), g.TotalPages(), g.EntriesPerPage())
	_, _ = fmt.Fprintf(w, "box_side=%d per_row=%d per_column=%d\n", geo.BoxSide, geo.BoxesPerRow, geo.BoxesPerColumn)
	_, _ = fmt.Fprintf(w, "page %d:\n", page)
	for _, b := range g.VisibleBoxes() {
		_, _ = fmt.Fprintf(w, "  entry %d at (%d,%d) side %d\n", b.Entry, b.X, b.Y, b.Side)
	}
	return nil
}

func cmdLocate(args []string, w io.Writer) (bool, error) {
	if len(args) < 9 {
		return false, fmt.Errorf("%w: locate %s <page> <px> <py>", errUsage, gridArgs)
	}
	g, err := parseGrid(args)
	if err != nil {
		return false, err
	}
	v, err := parseInts(args[6:9])
	if err != nil {
		return false, err
	}
	if v[0] < 0 || v[0] >= g.TotalPages() {
		return false, fmt.Errorf("page %d out of range [0,%d)", v[0], g.TotalPages())
	}
	g.SetActivePage(v[0])
	entry, ok := g.Locate(v[1], v[2])
	if !ok {
		_, _ = fmt.Fprintln(w, "no entry")
		return false, nil
	}
	_, _ = fmt.Fprintf(w, "entry %d\n", entry)
	return true, nil
}

func cmdExport(args []string, w io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: export pdf|png <out> %s", errUsage, gridArgs)
	}
	format, out := args[0], args[1]
	g, err := parseGrid(args[2:])
	if err != nil {
		return err
	}
	switch format {
	case "pdf":
		if err := export.LayoutPDF(g, out, export.PDFOptions{Outline: true, Margin: 18}); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "wrote %s (%d pages)\n", out, g.TotalPages())
	case "png":
		paths, err := export.LayoutPNG(g, out, export.PNGOptions{Outline: true, Labels: true, Margin: 8})
		if err != nil {
			return err
		}
		for _, p := range paths {
			_, _ = fmt.Fprintln(w, "wrote", p)
		}
	default:
		return fmt.Errorf("%w: unknown export format %q", errUsage, format)
	}
	return nil
}

// openStore opens the configured state store.
func openStore(ctx context.Context, cfg config.AppConfig) (storage.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dsn, err := cfg.PostgresURL()
		if err != nil {
			return nil, err
		}
		return backend.OpenPostgres(ctx, dsn)
	default:
		return storage.OpenSQLite(cfg.Storage.SQLitePath)
	}
}

func withStore(cfg config.AppConfig, fn func(ctx context.Context, st storage.Store) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return fn(ctx, st)
}

func cmdState(ctx context.Context, st storage.Store, args []string, w io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: state save|load|list|delete|export|import", errUsage)
	}
	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%w: state %s needs %d argument(s)", errUsage, args[0], n-1)
		}
		return nil
	}
	switch args[0] {
	case "save":
		if err := need(8); err != nil {
			return err
		}
		g, err := parseGrid(args[2:])
		if err != nil {
			return err
		}
		page, err := optPage(args[8:])
		if err != nil {
			return err
		}
		g.SetActivePage(page)
		if err := storage.SaveGrid(ctx, st, args[1], g); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "saved %s: %s\n", args[1], g)
	case "load":
		if err := need(2); err != nil {
			return err
		}
		g, err := storage.LoadGrid(ctx, st, args[1])
		if err != nil {
			return err
		}
		geo := g.Geometry()
		_, _ = fmt.Fprintln(w, g)
		_, _ = fmt.Fprintf(w, "box_side=%d per_row=%d per_column=%d\n", geo.BoxSide, geo.BoxesPerRow, geo.BoxesPerColumn)
	case "list":
		list, err := st.List(ctx)
		if err != nil {
			return err
		}
		for _, info := range list {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, info.UpdatedAt.Format(time.RFC3339), info.State)
		}
	case "delete":
		if err := need(2); err != nil {
			return err
		}
		if err := st.Delete(ctx, args[1]); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, "deleted", args[1])
	case "export":
		if err := need(3); err != nil {
			return err
		}
		s, err := st.Load(ctx, args[1])
		if err != nil {
			return err
		}
		if err := storage.WriteLayoutDocument(args[2], args[1], s); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, "wrote", args[2])
	case "import":
		if err := need(2); err != nil {
			return err
		}
		doc, err := storage.ReadLayoutDocument(args[1])
		if err != nil {
			return err
		}
		name := doc.Name
		if len(args) > 2 {
			name = args[2]
		}
		if err := st.Save(ctx, name, doc.State); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "imported %s as %s\n", args[1], name)
	default:
		return fmt.Errorf("%w: unknown state command %q", errUsage, args[0])
	}
	return nil
}

func runUI(cfg config.AppConfig, name string) error {
	opts := ui.Options{Grid: cfg.Grid, StateName: name}
	if name != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		st, err := openStore(ctx, cfg)
		cancel()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		opts.Store = st
	}
	return ui.Run(opts)
}
