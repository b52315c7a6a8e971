//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"gridpager/internal/crash"
	applog "gridpager/internal/log"
	"gridpager/internal/pagegrid"
	"gridpager/internal/storage"
	"gridpager/internal/version"
)

// Run opens a window hosting a GridView with page navigation and entry controls.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	g, err := openGrid(context.Background(), opts, pagegrid.WithLogger(applog.WithComponent("pagegrid")))
	if err != nil {
		return err
	}
	defer crash.Recover(opts.Store, opts.StateName, g)

	fyneApp := app.NewWithID("gridpager")
	w := fyneApp.NewWindow("GridPager")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 900), 320)
	winH := max(prefs.IntWithFallback("window.height", 700), 240)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	view := NewGridView(g, opts.Grid.Wrap)
	status := widget.NewLabel(view.Status())
	view.OnChange = func() { status.SetText(view.Status()) }
	view.OnSelect = func(entry int) {
		l.Debug("entry selected", slog.Int("entry", entry))
		status.SetText(fmt.Sprintf("%s, selected %d", view.Status(), entry))
	}

	save := func() {
		if opts.Store == nil || opts.StateName == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := storage.SaveGrid(ctx, opts.Store, opts.StateName, g); err != nil {
			l.Error("save grid state failed", slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		status.SetText(fmt.Sprintf("%s, saved as %q", view.Status(), opts.StateName))
	}

	toolbar := container.NewHBox(
		widget.NewButton("Previous", view.Previous),
		widget.NewButton("Next", view.Next),
		widget.NewSeparator(),
		widget.NewButton("Add entry", view.AddEntry),
		widget.NewButton("Remove entry", view.RemoveEntry),
		widget.NewSeparator(),
		widget.NewButton("Undo", view.Undo),
		widget.NewButton("Redo", view.Redo),
	)
	if opts.Store != nil && opts.StateName != "" {
		toolbar.Add(widget.NewSeparator())
		toolbar.Add(widget.NewButton("Save", save))
	}
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, view))

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		save()
		w.Close()
	})

	w.ShowAndRun()
	return nil
}
