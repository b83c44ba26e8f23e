package frame

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	mandel "github.com/marben/mandelview"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ToRGBA copies a colour grid into an opaque image.
func ToRGBA(colors mandel.ColorGrid) *image.RGBA {
	h := len(colors)
	w := 0
	if h > 0 {
		w = len(colors[0])
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	WriteRGBA(img.Pix, colors)
	return img
}

// WriteRGBA stores colors into pix as packed RGBA rows.
// pix must hold at least 4 bytes per pixel.
func WriteRGBA(pix []byte, colors mandel.ColorGrid) {
	i := 0
	for _, row := range colors {
		for _, c := range row {
			pix[i+0] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
			pix[i+3] = 0xff
			i += 4
		}
	}
}

// DrawHUD writes lines of text over the top-left corner of img.
func DrawHUD(img draw.Image, lines ...string) {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()
	shadow := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: face}
	text := &font.Drawer{Dst: img, Src: image.NewUniform(color.White), Face: face}
	for i, line := range lines {
		y := 4 + (i+1)*lineHeight
		shadow.Dot = fixed.P(5, y+1)
		shadow.DrawString(line)
		text.Dot = fixed.P(4, y)
		text.DrawString(line)
	}
}

// HUDLines describes a result for DrawHUD.
func HUDLines(res mandel.RenderResult) []string {
	return []string{
		fmt.Sprintf("re [%.6g, %.6g]", res.Viewport.Xmin, res.Viewport.Xmax),
		fmt.Sprintf("im [%.6g, %.6g]", res.Viewport.Ymin, res.Viewport.Ymax),
		fmt.Sprintf("iter %d", res.Settings.MaxIterations),
	}
}

// Scale enlarges img by an integer factor without smoothing.
func Scale(img *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// EncodePNG writes img to w, favouring speed over size for streaming.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("png.Encode: %w", err)
	}
	return nil
}
