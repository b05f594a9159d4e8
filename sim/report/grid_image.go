package report

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/resistance-sim/resistance-sim/sim"
)

// RenderGrid draws the lattice with each cell as a cellSize x cellSize square.
func RenderGrid(src GridSource, cellSize int) *image.RGBA {
	if cellSize < 1 {
		cellSize = 1
	}
	w, h := src.Width(), src.Height()
	img := image.NewRGBA(image.Rect(0, 0, w*cellSize, h*cellSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: ColorEmpty}, image.Point{}, draw.Src)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a, ok := src.OccupantAt(sim.Position{X: x, Y: y})
			if !ok {
				continue
			}
			rect := image.Rect(x*cellSize, y*cellSize, (x+1)*cellSize, (y+1)*cellSize)
			draw.Draw(img, rect, &image.Uniform{C: AgentColor(a)}, image.Point{}, draw.Src)
		}
	}
	return img
}

// WriteGridPNG renders the lattice and encodes it as PNG.
func WriteGridPNG(w io.Writer, src GridSource, cellSize int) error {
	if err := png.Encode(w, RenderGrid(src, cellSize)); err != nil {
		return fmt.Errorf("encoding grid png: %w", err)
	}
	return nil
}
