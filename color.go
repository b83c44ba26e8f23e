package mandel

import "math"

// RGB is an opaque 8-bit colour.
type RGB struct {
	R, G, B uint8
}

// ColorGrid holds one colour per pixel, one slice per row.
type ColorGrid [][]RGB

// NewColorGrid allocates a rows×cols grid backed by one contiguous slice.
func NewColorGrid(rows, cols int) ColorGrid {
	backing := make([]RGB, rows*cols)
	g := make(ColorGrid, rows)
	for r := range g {
		g[r] = backing[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return g
}

// Sub returns the rows of g covered by region. The result aliases g.
func (g ColorGrid) Sub(region PixelRegion) ColorGrid {
	return g[region.StartRow:region.EndRow]
}

// IterationsToColor maps an escape time onto a hue ramp.
// Points that never escaped are black.
func IterationsToColor(iterations, maxIterations uint32) RGB {
	if iterations >= maxIterations {
		return RGB{}
	}
	t := float64(iterations) / float64(maxIterations)
	// sqrt spreads the low counts, where most of the frame lives
	return hsv(math.Sqrt(t)*0.85+0.55, 0.9, 1)
}

// Colorize fills dst with the colours of src. Both must have the same shape.
func Colorize(dst ColorGrid, src PixelMatrix, maxIterations uint32) {
	for r, row := range src {
		out := dst[r]
		for c, it := range row {
			out[c] = IterationsToColor(it, maxIterations)
		}
	}
}

// Simple HSV → RGB
func hsv(h, s, v float64) RGB {
	h = math.Mod(h, 1)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return RGB{uint8(r * 255), uint8(g * 255), uint8(b * 255)}
}
