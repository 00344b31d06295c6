// Package charts renders query results to PNG with gonum/plot. Builders
// return a *plot.Plot so callers can size them; WritePNG and EncodePNG
// do the actual rendering for files and HTTP responses respectively.
package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/croplens/croplens/internal/query"
	"github.com/croplens/croplens/internal/utils"
)

// Default canvas sizes. The overview panel uses PanelWidth/PanelHeight.
const (
	Width       = 12 * vg.Inch
	Height      = 6 * vg.Inch
	PanelWidth  = 16 * vg.Inch
	PanelHeight = 10 * vg.Inch
)

// Series is one named line of a time-series chart.
type Series struct {
	Name   string
	Points []query.YearValue
}

// seriesPalette cycles when a chart carries more lines than colors.
var seriesPalette = []color.RGBA{
	{R: 70, G: 130, B: 180, A: 255},  // steel blue
	{R: 0, G: 100, B: 0, A: 255},     // dark green
	{R: 178, G: 34, B: 34, A: 255},   // firebrick
	{R: 218, G: 165, B: 32, A: 255},  // goldenrod
	{R: 72, G: 61, B: 139, A: 255},   // dark slate blue
	{R: 205, G: 92, B: 92, A: 255},   // indian red
	{R: 46, G: 139, B: 87, A: 255},   // sea green
	{R: 128, G: 128, B: 128, A: 255}, // gray
}

func paletteColor(i int) color.RGBA {
	return seriesPalette[i%len(seriesPalette)]
}

var (
	barBlue   = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	barGreen  = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	barRed    = color.RGBA{R: 178, G: 34, B: 34, A: 255}
	barOrange = color.RGBA{R: 218, G: 165, B: 32, A: 255}
)

// WritePNG renders p at the given size and writes the file atomically.
func WritePNG(p *plot.Plot, w, h vg.Length, path string) error {
	var buf bytes.Buffer
	if err := EncodePNG(p, w, h, &buf); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// EncodePNG renders p at the given size to out.
func EncodePNG(p *plot.Plot, w, h vg.Length, out io.Writer) error {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(out); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return nil
}
