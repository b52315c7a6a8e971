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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	applog "gridpager/internal/log"
	"gridpager/internal/pagegrid"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PNGOptions controls PNG export behavior.
// - Scale: output pixels per screen pixel, 1 when zero
// - Margin: blank border in screen pixels
// - Labels: draw entry numbers with the 7x13 bitmap face when the box is large enough
//
//nolint:revive // clarity is preferred
type PNGOptions struct {
	Outline      bool
	Labels       bool
	Scale        int
	Margin       int
	BoxColor     color.RGBA
	OutlineColor color.RGBA
	Pages        []int
}

// LayoutPNG writes page-<n>.png (1-based) for each grid page into outDir and
// returns the written paths.
func LayoutPNG(g *pagegrid.Grid, outDir string, opt PNGOptions) ([]string, error) {
	if g == nil {
		return nil, ErrNilGrid
	}
	l := applog.WithOperation(applog.WithComponent("export"), "png")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var written []string
	err := eachPage(g, opt.Pages, func(page int, boxes []pagegrid.Box) error {
		img := renderPage(g.Area(), boxes, opt)
		name := filepath.Join(outDir, fmt.Sprintf("page-%d.png", page+1))
		if err := writePNG(name, img); err != nil {
			return err
		}
		written = append(written, name)
		return nil
	})
	if err != nil {
		return written, err
	}
	l.Info("layout png written", slog.String("dir", outDir), slog.Int("pages", len(written)))
	return written, nil
}

func renderPage(area pagegrid.Rect, boxes []pagegrid.Box, opt PNGOptions) *image.RGBA {
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	margin := max(opt.Margin, 0)
	pixW := (area.Width + 2*margin) * scale
	pixH := (area.Height + 2*margin) * scale

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	// Background white
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	if opt.Outline {
		m := margin * scale
		strokeRect(img, m, m, m+area.Width*scale-1, m+area.Height*scale-1, orDefault(opt.OutlineColor, defaultOutlineColor))
	}
	bc := orDefault(opt.BoxColor, defaultBoxColor)
	face := basicfont.Face7x13
	for _, b := range boxes {
		x := (b.X - area.X + margin) * scale
		y := (b.Y - area.Y + margin) * scale
		side := b.Side * scale
		strokeRect(img, x, y, x+side-1, y+side-1, bc)
		if opt.Labels {
			drawLabel(img, face, x, y, side, strconv.Itoa(b.Entry))
		}
	}
	return img
}

// drawLabel centers s in the box at (x, y); labels that do not fit are skipped.
func drawLabel(img *image.RGBA, face *basicfont.Face, x, y, side int, s string) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(defaultLabelColor), Face: face}
	w := d.MeasureString(s).Ceil()
	m := face.Metrics()
	h := m.Ascent.Ceil() + m.Descent.Ceil()
	if w+2 > side || h+2 > side {
		return
	}
	bx := x + (side-w)/2
	by := y + (side-h)/2 + m.Ascent.Ceil()
	d.Dot = fixed.P(bx, by)
	d.DrawString(s)
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}
