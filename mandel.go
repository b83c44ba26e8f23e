package mandel

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Viewport is the rectangle of the complex plane mapped onto the pixel grid.
type Viewport struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

func (v Viewport) Width() float64  { return v.Xmax - v.Xmin }
func (v Viewport) Height() float64 { return v.Ymax - v.Ymin }

// Validate reports whether v is a finite, non-degenerate rectangle.
func (v Viewport) Validate() error {
	for _, f := range [...]float64{v.Xmin, v.Xmax, v.Ymin, v.Ymax} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite bound in %v", ErrInvalidViewport, v)
		}
	}
	if !(v.Width() > 0) || !(v.Height() > 0) {
		return fmt.Errorf("%w: empty span in %v", ErrInvalidViewport, v)
	}
	return nil
}

func (v Viewport) String() string {
	return fmt.Sprintf("[%g, %g]x[%g, %g]", v.Xmin, v.Xmax, v.Ymin, v.Ymax)
}

// DefaultViewport shows the whole set.
var DefaultViewport = Viewport{
	Xmin: -2.0,
	Xmax: 1.0,
	Ymin: -1.5,
	Ymax: 1.5,
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Viewport{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Viewport{
		Xmin: -1.85,
		Xmax: -1.75,
		Ymin: -0.10,
		Ymax: -0.02,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Viewport{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Viewport{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Viewport{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}
)

var landmarks = map[string]Viewport{
	"default":  DefaultViewport,
	"seahorse": SeahorseValley,
	"elephant": ElephantValley,
	"spiral":   SpiralMinibrot,
	"triple":   TripleSpiral,
	"dragon":   ValleyOfTheDragon,
}

// Landmark looks up a named viewport. Names are case-insensitive.
func Landmark(name string) (Viewport, error) {
	v, ok := landmarks[strings.ToLower(name)]
	if !ok {
		return Viewport{}, fmt.Errorf("unknown region %q (known: %s)", name, strings.Join(LandmarkNames(), ", "))
	}
	return v, nil
}

// LandmarkNames returns the known landmark names in sorted order.
func LandmarkNames() []string {
	names := make([]string, 0, len(landmarks))
	for n := range landmarks {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// PixelToComplex maps pixel (col, row) of a screenW×screenH grid onto v.
// col == screenW and row == screenH are allowed and land on the far edge.
func PixelToComplex(col, row int, v Viewport, screenW, screenH int) complex128 {
	re := v.Xmin + (float64(col)/float64(screenW))*v.Width()
	im := v.Ymin + (float64(row)/float64(screenH))*v.Height()
	return complex(re, im)
}

// Iterations returns the index of the first iteration of z = z² + c (z₀ = 0)
// for which |z| exceeds escapeRadius, or maxIterations if it never does.
func Iterations(c complex128, maxIterations uint32, escapeRadius float64) uint32 {
	r2 := escapeRadius * escapeRadius
	z := complex(0, 0)
	for i := uint32(0); i < maxIterations; i++ {
		z = z*z + c
		if real(z)*real(z)+imag(z)*imag(z) > r2 {
			return i
		}
	}
	return maxIterations
}
