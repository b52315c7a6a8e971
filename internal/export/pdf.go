/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	applog "gridpager/internal/log"
	"gridpager/internal/pagegrid"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions controls PDF export behavior.
// One screen pixel maps to one point. Margin (pt) surrounds the grid area on
// every page. Zero colors fall back to defaults.
type PDFOptions struct {
	Outline      bool // draw the grid area rectangle
	Margin       float64
	Title        string
	BoxColor     color.RGBA
	OutlineColor color.RGBA
	Pages        []int // if empty, export all pages
}

// LayoutPDF writes a multi-page PDF to outPath with one page per grid page.
func LayoutPDF(g *pagegrid.Grid, outPath string, opt PDFOptions) error {
	if g == nil {
		return ErrNilGrid
	}
	l := applog.WithOperation(applog.WithComponent("export"), "pdf")
	pdf, err := buildPDF(g, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	pages := pdf.PageCount()
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	l.Info("layout pdf written", slog.String("path", outPath), slog.Int("pages", pages))
	return nil
}

func buildPDF(g *pagegrid.Grid, opt PDFOptions) (*gofpdf.Fpdf, error) {
	margin := opt.Margin
	if margin < 0 {
		margin = 0
	}
	area := g.Area()
	mediaW := float64(area.Width) + 2*margin
	mediaH := float64(area.Height) + 2*margin
	size := gofpdf.SizeType{Wd: mediaW, Ht: mediaH}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	title := opt.Title
	if title == "" {
		title = "Grid layout"
	}
	pdf.SetTitle(title, false)
	pdf.SetAuthor("GridPager", false)
	pdf.SetAutoPageBreak(false, 0)

	boxCol := orDefault(opt.BoxColor, defaultBoxColor)
	outlineCol := orDefault(opt.OutlineColor, defaultOutlineColor)

	// screen coordinates to page coordinates
	tx := func(x int) float64 { return float64(x-area.X) + margin }
	ty := func(y int) float64 { return float64(y-area.Y) + margin }

	err := eachPage(g, opt.Pages, func(page int, boxes []pagegrid.Box) error {
		pdf.AddPageFormat("", size)
		if opt.Outline {
			setDrawColor(pdf, outlineCol)
			pdf.SetLineWidth(0.5)
			pdf.Rect(margin, margin, float64(area.Width), float64(area.Height), "D")
		}
		setDrawColor(pdf, boxCol)
		pdf.SetLineWidth(0.75)
		pdf.SetTextColor(int(defaultLabelColor.R), int(defaultLabelColor.G), int(defaultLabelColor.B))
		for _, b := range boxes {
			side := float64(b.Side)
			x, y := tx(b.X), ty(b.Y)
			pdf.Rect(x, y, side, side, "D")
			fsz := labelSize(side)
			pdf.SetFont("Helvetica", "", fsz)
			label := strconv.Itoa(b.Entry)
			w := pdf.GetStringWidth(label)
			// centered; the baseline sits about a third of the font size below the middle
			pdf.Text(x+(side-w)/2, y+side/2+fsz/3, label)
		}
		return pdf.Error()
	})
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}

// labelSize scales the label font with the box, within 4..12 pt.
func labelSize(side float64) float64 {
	fsz := side * 0.3
	switch {
	case fsz < 4:
		return 4
	case fsz > 12:
		return 12
	}
	return fsz
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}
