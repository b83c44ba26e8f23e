package mandel

import (
	"flag"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config gathers everything a frontend needs to start a session.
type Config struct {
	Width, Height int
	MaxIterations uint
	EscapeRadius  float64

	// Workers is the render pool size and Strips the number of regions per frame.
	// They are independent; Strips <= 0 means one strip per worker.
	Workers int
	Strips  int

	ZoomFactor   float64
	ZoomInterval time.Duration
	FPS          int

	Viewport Viewport
}

func DefaultConfig() Config {
	workers := runtime.GOMAXPROCS(0)
	return Config{
		Width:         800,
		Height:        600,
		MaxIterations: 256,
		EscapeRadius:  2.0,
		Workers:       workers,
		Strips:        workers,
		ZoomFactor:    0.8,
		ZoomInterval:  100 * time.Millisecond,
		FPS:           60,
		Viewport:      DefaultViewport,
	}
}

// RegisterFlags binds c's fields to fs. Current values become the defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "width", c.Width, "frame width in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "frame height in pixels")
	fs.UintVar(&c.MaxIterations, "iter", c.MaxIterations, "maximum escape-time iterations")
	fs.Float64Var(&c.EscapeRadius, "radius", c.EscapeRadius, "escape radius")
	fs.IntVar(&c.Workers, "workers", c.Workers, "render worker pool size")
	fs.IntVar(&c.Strips, "strips", c.Strips, "horizontal strips per frame (0: one per worker)")
	fs.Float64Var(&c.ZoomFactor, "zoom", c.ZoomFactor, "zoom-in span factor per tick")
	fs.DurationVar(&c.ZoomInterval, "zoom-interval", c.ZoomInterval, "minimum time between zoom ticks")
	fs.IntVar(&c.FPS, "fps", c.FPS, "frame rate cap")
	fs.Func("region", "start viewport: "+strings.Join(LandmarkNames(), ", "), func(s string) error {
		v, err := Landmark(s)
		if err != nil {
			return err
		}
		c.Viewport = v
		return nil
	})
}

func (c Config) Validate() error {
	if c.MaxIterations > 1<<31 {
		return fmt.Errorf("%w: max iterations %d too large", ErrInvalidSettings, c.MaxIterations)
	}
	if err := c.Settings().Validate(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidSettings)
	}
	if !(c.ZoomFactor > 0 && c.ZoomFactor < 1) {
		return fmt.Errorf("%w: zoom factor %g not in (0, 1)", ErrInvalidSettings, c.ZoomFactor)
	}
	if c.FPS < 1 {
		return fmt.Errorf("%w: fps must be positive", ErrInvalidSettings)
	}
	return c.Viewport.Validate()
}

func (c Config) Settings() RenderSettings {
	return RenderSettings{
		Width:         c.Width,
		Height:        c.Height,
		MaxIterations: uint32(c.MaxIterations),
		EscapeRadius:  c.EscapeRadius,
	}
}

// StripCount resolves Strips against Workers.
func (c Config) StripCount() int {
	if c.Strips <= 0 {
		return c.Workers
	}
	return c.Strips
}
