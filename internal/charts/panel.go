package charts

import (
	"bytes"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/croplens/croplens/internal/utils"
)

// EncodePanelPNG tiles plots onto one canvas, row-major, and writes a
// single PNG. Nil entries leave their tile blank. Used for the 2x2
// dataset overview.
func EncodePanelPNG(plots []*plot.Plot, rows, cols int, w, h vg.Length, out io.Writer) error {
	if rows*cols < len(plots) {
		return fmt.Errorf("panel: %d plots do not fit %dx%d", len(plots), rows, cols)
	}
	img := vgimg.New(w, h)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadX: vg.Millimeter * 2,
		PadY: vg.Millimeter * 2,
	}
	for i, p := range plots {
		if p == nil {
			continue
		}
		p.Draw(tiles.At(dc, i%cols, i/cols))
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(out); err != nil {
		return fmt.Errorf("encode panel: %w", err)
	}
	return nil
}

// WritePanelPNG is EncodePanelPNG to an atomically written file.
func WritePanelPNG(plots []*plot.Plot, rows, cols int, w, h vg.Length, path string) error {
	var buf bytes.Buffer
	if err := EncodePanelPNG(plots, rows, cols, w, h, &buf); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write panel: %w", err)
	}
	return nil
}
