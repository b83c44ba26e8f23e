package mandel

import "fmt"

// RenderSettings describe one frame. They are copied into every render task.
type RenderSettings struct {
	Width, Height int
	MaxIterations uint32
	EscapeRadius  float64
}

func (s RenderSettings) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidSettings, s.Width, s.Height)
	case s.MaxIterations == 0:
		return fmt.Errorf("%w: max iterations must be positive", ErrInvalidSettings)
	case !(s.EscapeRadius > 0):
		return fmt.Errorf("%w: escape radius %g", ErrInvalidSettings, s.EscapeRadius)
	}
	return nil
}

// RenderResult is a computed frame. A result with no colour data means
// nothing was recomputed and the previous frame is still current.
type RenderResult struct {
	Viewport Viewport
	Settings RenderSettings
	Pixels   PixelMatrix
	Colors   ColorGrid
}

func (r RenderResult) Empty() bool { return len(r.Colors) == 0 }

// AppState is the session state. The frame driver is its only owner;
// render tasks get copies of Viewport, never the struct itself.
type AppState struct {
	Viewport     Viewport
	NeedRerender bool
	LeftPressed  bool
	RightPressed bool
	ShouldExit   bool
}

// NewAppState starts a session that renders its first frame immediately.
func NewAppState(v Viewport) *AppState {
	return &AppState{Viewport: v, NeedRerender: true}
}
