package zoom

import (
	"math"
	"testing"
	"time"

	mandel "github.com/marben/mandelview"
)

var settings = mandel.RenderSettings{Width: 100, Height: 80, MaxIterations: 64, EscapeRadius: 2}

// fakeClock drives a Controller's throttle by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController() (*Controller, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewController(DefaultFactor, DefaultInterval)
	c.now = clk.now
	return c, clk
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestZoomAt_FixedPoint(t *testing.T) {
	v := mandel.DefaultViewport
	points := [][2]int{{0, 0}, {50, 40}, {99, 79}, {13, 71}, {87, 5}}
	for _, factor := range []float64{0.8, 1 / 0.8} {
		for _, p := range points {
			before := mandel.PixelToComplex(p[0], p[1], v, settings.Width, settings.Height)
			nv := ZoomAt(v, p[0], p[1], settings.Width, settings.Height, factor)
			after := mandel.PixelToComplex(p[0], p[1], nv, settings.Width, settings.Height)

			if !near(real(before), real(after), 1e-12) || !near(imag(before), imag(after), 1e-12) {
				t.Errorf("factor %g at %v: point moved from %v to %v", factor, p, before, after)
			}
			if !near(nv.Width(), v.Width()*factor, 1e-12) || !near(nv.Height(), v.Height()*factor, 1e-12) {
				t.Errorf("factor %g at %v: span %gx%g, want %gx%g",
					factor, p, nv.Width(), nv.Height(), v.Width()*factor, v.Height()*factor)
			}
		}
	}
}

func TestController_PressMarksDirty(t *testing.T) {
	c, _ := newTestController()
	st := &mandel.AppState{Viewport: mandel.DefaultViewport}

	if c.Mode(st) != Idle {
		t.Fatalf("Mode = %s, want idle", c.Mode(st))
	}
	c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonPressed, Button: mandel.ButtonLeft})
	if !st.LeftPressed || !st.NeedRerender {
		t.Errorf("after left press: %+v", *st)
	}
	if c.Mode(st) != ZoomingIn {
		t.Errorf("Mode = %s, want zooming in", c.Mode(st))
	}
	if st.Viewport != mandel.DefaultViewport {
		t.Error("press alone changed the viewport")
	}

	c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonReleased, Button: mandel.ButtonLeft})
	if st.LeftPressed || c.Mode(st) != Idle {
		t.Errorf("after release: %+v, mode %s", *st, c.Mode(st))
	}
}

func TestController_IgnoresOtherButtons(t *testing.T) {
	c, _ := newTestController()
	st := &mandel.AppState{Viewport: mandel.DefaultViewport}
	c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonPressed, Button: mandel.ButtonOther})
	if st.NeedRerender || c.Mode(st) != Idle {
		t.Errorf("middle button changed state: %+v", *st)
	}
}

func TestController_Tick(t *testing.T) {
	tests := []struct {
		name   string
		button mandel.Button
		factor float64
	}{
		{"zoom in", mandel.ButtonLeft, 0.8},
		{"zoom out", mandel.ButtonRight, 1 / 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController()
			st := &mandel.AppState{Viewport: mandel.DefaultViewport}
			c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonPressed, Button: tt.button})
			st.NeedRerender = false

			before := st.Viewport
			if !c.Tick(st, 30, 60, settings) {
				t.Fatal("Tick did not zoom")
			}
			if !st.NeedRerender {
				t.Error("Tick did not mark the state dirty")
			}
			if !near(st.Viewport.Width(), before.Width()*tt.factor, 1e-12) {
				t.Errorf("width = %g, want %g", st.Viewport.Width(), before.Width()*tt.factor)
			}
		})
	}
}

func TestController_TickThrottled(t *testing.T) {
	c, clk := newTestController()
	st := &mandel.AppState{Viewport: mandel.DefaultViewport}
	c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonPressed, Button: mandel.ButtonLeft})

	if !c.Tick(st, 50, 40, settings) {
		t.Fatal("first tick did not zoom")
	}
	clk.advance(50 * time.Millisecond)
	if c.Tick(st, 50, 40, settings) {
		t.Error("tick 50ms after the previous one zoomed")
	}
	clk.advance(50 * time.Millisecond)
	if !c.Tick(st, 50, 40, settings) {
		t.Error("tick 100ms after the previous one did not zoom")
	}
}

func TestController_TickOutsideFrame(t *testing.T) {
	c, _ := newTestController()
	st := &mandel.AppState{Viewport: mandel.DefaultViewport}
	c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonPressed, Button: mandel.ButtonLeft})

	for _, p := range [][2]int{{-1, 10}, {10, -1}, {100, 10}, {10, 80}} {
		if c.Tick(st, p[0], p[1], settings) {
			t.Errorf("tick at %v outside the frame zoomed", p)
		}
	}
	if st.Viewport != mandel.DefaultViewport {
		t.Error("viewport changed")
	}
	if c.Mode(st) != ZoomingIn {
		t.Errorf("Mode = %s, want zooming in", c.Mode(st))
	}
}

func TestController_TickIdle(t *testing.T) {
	c, _ := newTestController()
	st := &mandel.AppState{Viewport: mandel.DefaultViewport}
	if c.Tick(st, 10, 10, settings) || st.NeedRerender {
		t.Error("idle tick changed state")
	}
}

func TestController_BothHeldZoomsIn(t *testing.T) {
	c, clk := newTestController()
	st := &mandel.AppState{Viewport: mandel.DefaultViewport}
	c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonPressed, Button: mandel.ButtonRight})
	c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonPressed, Button: mandel.ButtonLeft})

	before := st.Viewport.Width()
	c.Tick(st, 50, 40, settings)
	if st.Viewport.Width() >= before {
		t.Errorf("both held: width %g -> %g, want zoom in", before, st.Viewport.Width())
	}

	// releasing left hands over to the still held right button
	c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonReleased, Button: mandel.ButtonLeft})
	if c.Mode(st) != ZoomingOut {
		t.Fatalf("Mode = %s, want zooming out", c.Mode(st))
	}
	clk.advance(DefaultInterval)
	before = st.Viewport.Width()
	c.Tick(st, 50, 40, settings)
	if st.Viewport.Width() <= before {
		t.Errorf("right held: width %g -> %g, want zoom out", before, st.Viewport.Width())
	}
}

func TestController_HeldForeverStaysValid(t *testing.T) {
	for _, b := range []mandel.Button{mandel.ButtonLeft, mandel.ButtonRight} {
		c, clk := newTestController()
		st := &mandel.AppState{Viewport: mandel.DefaultViewport}
		c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonPressed, Button: b})

		zoomed := 0
		for i := range 5000 {
			if c.Tick(st, 70, 20, settings) {
				zoomed++
			}
			if err := st.Viewport.Validate(); err != nil {
				t.Fatalf("button %d, tick %d: %v", b, i, err)
			}
			if math.IsInf(st.Viewport.Width(), 0) || math.IsInf(st.Viewport.Height(), 0) {
				t.Fatalf("button %d, tick %d: infinite span in %v", b, i, st.Viewport)
			}
			clk.advance(DefaultInterval)
		}
		if zoomed == 0 || zoomed == 5000 {
			t.Errorf("button %d: %d of 5000 ticks zoomed, want the limit reached", b, zoomed)
		}
	}
}

func TestController_RecoversAtLimit(t *testing.T) {
	c, clk := newTestController()
	st := &mandel.AppState{Viewport: mandel.Viewport{Xmin: -8e307, Xmax: 8e307, Ymin: -8e307, Ymax: 8e307}}
	c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonPressed, Button: mandel.ButtonRight})
	st.NeedRerender = false

	before := st.Viewport
	if c.Tick(st, 50, 40, settings) {
		t.Fatalf("zoomed out past float64 range to %v", st.Viewport)
	}
	if st.Viewport != before || st.NeedRerender {
		t.Errorf("skipped step changed state: %+v", *st)
	}

	// the held view still zooms back in
	c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonReleased, Button: mandel.ButtonRight})
	c.HandleEvent(st, mandel.Event{Kind: mandel.ButtonPressed, Button: mandel.ButtonLeft})
	clk.advance(DefaultInterval)
	if !c.Tick(st, 50, 40, settings) || st.Viewport.Width() >= before.Width() {
		t.Errorf("zoom in from the limit: %v", st.Viewport)
	}
}

func TestNewController_Defaults(t *testing.T) {
	c := NewController(2, -time.Second)
	if c.Factor != DefaultFactor || c.Interval != DefaultInterval {
		t.Errorf("NewController(2, -1s) = %g, %s", c.Factor, c.Interval)
	}
}
