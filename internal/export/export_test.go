/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"gridpager/internal/pagegrid"
)

// sampleGrid is 100x100 with 10 entries on 2 pages: 5 per page, side 33, 3 per row.
func sampleGrid(t *testing.T) *pagegrid.Grid {
	t.Helper()
	g, err := pagegrid.New(0, 0, 100, 100, 10, 2)
	if err != nil {
		t.Fatalf("pagegrid.New: %v", err)
	}
	return g
}

func TestPageIndexes(t *testing.T) {
	if got := pageIndexes(3, nil); len(got) != 3 || got[2] != 2 {
		t.Fatalf("all pages: %v", got)
	}
	if got := pageIndexes(3, []int{2, 5, -1, 0}); len(got) != 2 || got[0] != 2 || got[1] != 0 {
		t.Fatalf("subset: %v", got)
	}
}

func TestLayoutPDF_CreatesFile(t *testing.T) {
	g := sampleGrid(t)
	g.SetActivePage(1)
	out := filepath.Join(t.TempDir(), "sheets", "layout.pdf")
	if err := LayoutPDF(g, out, PDFOptions{Outline: true, Margin: 18}); err != nil {
		t.Fatalf("LayoutPDF: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() <= 0 {
		t.Fatalf("pdf file empty")
	}
	if g.ActivePage() != 1 {
		t.Fatalf("active page not restored: %d", g.ActivePage())
	}
}

func TestBuildPDF_OnePagePerGridPage(t *testing.T) {
	g := sampleGrid(t)
	pdf, err := buildPDF(g, PDFOptions{})
	if err != nil {
		t.Fatalf("buildPDF: %v", err)
	}
	if pdf.PageCount() != 2 {
		t.Fatalf("expected 2 pdf pages, got %d", pdf.PageCount())
	}
	pdf, err = buildPDF(g, PDFOptions{Pages: []int{1}})
	if err != nil {
		t.Fatalf("buildPDF subset: %v", err)
	}
	if pdf.PageCount() != 1 {
		t.Fatalf("expected 1 pdf page, got %d", pdf.PageCount())
	}
}

func TestLabelSize(t *testing.T) {
	if labelSize(5) != 4 || labelSize(1000) != 12 || labelSize(20) != 6 {
		t.Fatalf("labelSize out of range: %v %v %v", labelSize(5), labelSize(1000), labelSize(20))
	}
}

func TestLayoutPNG_WritesPages(t *testing.T) {
	g := sampleGrid(t)
	outDir := filepath.Join(t.TempDir(), "png")
	paths, err := LayoutPNG(g, outDir, PNGOptions{Labels: true})
	if err != nil {
		t.Fatalf("LayoutPNG: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %v", paths)
	}
	if filepath.Base(paths[1]) != "page-2.png" {
		t.Fatalf("unexpected name %s", paths[1])
	}
	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Fatalf("unexpected size %v", b)
	}
	black := color.RGBA{A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	// corner of the first box and the free bottom-right corner
	if c := color.RGBAModel.Convert(img.At(0, 0)); c != black {
		t.Fatalf("box corner color %v", c)
	}
	if c := color.RGBAModel.Convert(img.At(99, 99)); c != white {
		t.Fatalf("empty area color %v", c)
	}
	if g.ActivePage() != 0 {
		t.Fatalf("active page not restored: %d", g.ActivePage())
	}
}

func TestRenderPage_ScaleAndMargin(t *testing.T) {
	g, err := pagegrid.New(50, 50, 200, 100, 8, 1)
	if err != nil {
		t.Fatalf("pagegrid.New: %v", err)
	}
	img := renderPage(g.Area(), g.VisibleBoxes(), PNGOptions{Scale: 2, Margin: 10})
	if b := img.Bounds(); b.Dx() != 440 || b.Dy() != 240 {
		t.Fatalf("unexpected size %v", b)
	}
	// second box starts 50 screen px right of the area origin
	if c := img.RGBAAt(20+100, 20); c != defaultBoxColor {
		t.Fatalf("box edge color %v", c)
	}
	if c := img.RGBAAt(5, 5); c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("margin color %v", c)
	}
}

func TestRenderPage_Outline(t *testing.T) {
	g := sampleGrid(t)
	red := color.RGBA{R: 255, A: 255}
	img := renderPage(g.Area(), g.VisibleBoxes(), PNGOptions{Outline: true, OutlineColor: red})
	// boxes end at x=98, the outline's right edge stays visible
	if c := img.RGBAAt(99, 50); c != red {
		t.Fatalf("outline color %v", c)
	}
}

func TestExportNilGrid(t *testing.T) {
	if err := LayoutPDF(nil, filepath.Join(t.TempDir(), "x.pdf"), PDFOptions{}); !errors.Is(err, ErrNilGrid) {
		t.Fatalf("LayoutPDF nil: %v", err)
	}
	if _, err := LayoutPNG(nil, t.TempDir(), PNGOptions{}); !errors.Is(err, ErrNilGrid) {
		t.Fatalf("LayoutPNG nil: %v", err)
	}
}
