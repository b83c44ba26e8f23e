// Package zoom turns held pointer buttons into viewport changes.
//
// Holding the left button zooms in around the pointer, holding the right
// button zooms out. If both are held, zooming in wins for that tick.
package zoom

import (
	"math"
	"time"

	mandel "github.com/marben/mandelview"
)

type Mode int

const (
	Idle Mode = iota
	ZoomingIn
	ZoomingOut
)

func (m Mode) String() string {
	switch m {
	case ZoomingIn:
		return "zooming in"
	case ZoomingOut:
		return "zooming out"
	}
	return "idle"
}

const (
	DefaultFactor   = 0.8
	DefaultInterval = 100 * time.Millisecond
)

// Controller applies at most one zoom step per Interval while a button is held.
// It mutates the AppState it is given and must run on the state's owner goroutine.
type Controller struct {
	Factor   float64
	Interval time.Duration

	now      func() time.Time
	lastTick time.Time
}

func NewController(factor float64, interval time.Duration) *Controller {
	if !(factor > 0 && factor < 1) {
		factor = DefaultFactor
	}
	if interval < 0 {
		interval = DefaultInterval
	}
	return &Controller{Factor: factor, Interval: interval, now: time.Now}
}

// HandleEvent records button presses and releases.
// A press marks the state dirty; the zoom itself waits for the next Tick.
func (c *Controller) HandleEvent(st *mandel.AppState, ev mandel.Event) {
	switch ev.Kind {
	case mandel.ButtonPressed:
		switch ev.Button {
		case mandel.ButtonLeft:
			st.LeftPressed = true
			st.NeedRerender = true
		case mandel.ButtonRight:
			st.RightPressed = true
			st.NeedRerender = true
		}
	case mandel.ButtonReleased:
		switch ev.Button {
		case mandel.ButtonLeft:
			st.LeftPressed = false
		case mandel.ButtonRight:
			st.RightPressed = false
		}
	}
}

// Mode derives the current state from the held buttons.
func (c *Controller) Mode(st *mandel.AppState) Mode {
	switch {
	case st.LeftPressed:
		return ZoomingIn
	case st.RightPressed:
		return ZoomingOut
	}
	return Idle
}

// Tick zooms around pixel (x, y) if a button is held, the pixel lies inside
// the frame and Interval has passed since the last step. A step that would
// leave a viewport that is not finite or has collapsed is skipped. Tick
// reports whether the viewport changed.
func (c *Controller) Tick(st *mandel.AppState, x, y int, s mandel.RenderSettings) bool {
	mode := c.Mode(st)
	if mode == Idle {
		return false
	}
	if x < 0 || x >= s.Width || y < 0 || y >= s.Height {
		return false
	}
	now := c.now()
	if !c.lastTick.IsZero() && now.Sub(c.lastTick) < c.Interval {
		return false
	}

	factor := c.Factor
	if mode == ZoomingOut {
		factor = 1 / c.Factor
	}
	next := ZoomAt(st.Viewport, x, y, s.Width, s.Height, factor)
	if !usable(next) {
		// at the limit of float64 range or precision; hold the last good view
		return false
	}
	st.Viewport = next
	st.NeedRerender = true
	c.lastTick = now

	mandel.Logger().Debug("zoom", "mode", mode.String(), "x", x, "y", y, "viewport", st.Viewport.String())
	return true
}

// usable reports whether v can still be rendered and zoomed.
func usable(v mandel.Viewport) bool {
	w, h := v.Width(), v.Height()
	return v.Validate() == nil && !math.IsInf(w, 0) && !math.IsInf(h, 0)
}

// ZoomAt scales v by factor around the point under pixel (px, py) of a
// screenW×screenH frame. That point maps to the same pixel afterwards.
func ZoomAt(v mandel.Viewport, px, py, screenW, screenH int, factor float64) mandel.Viewport {
	target := mandel.PixelToComplex(px, py, v, screenW, screenH)
	fx := float64(px) / float64(screenW)
	fy := float64(py) / float64(screenH)

	w := v.Width() * factor
	h := v.Height() * factor

	xmin := real(target) - fx*w
	ymin := imag(target) - fy*h
	return mandel.Viewport{
		Xmin: xmin,
		Xmax: xmin + w,
		Ymin: ymin,
		Ymax: ymin + h,
	}
}
