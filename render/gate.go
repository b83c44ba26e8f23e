package render

import (
	"context"

	mandel "github.com/marben/mandelview"
)

// Gate skips rendering while the session has nothing new to show.
type Gate struct {
	renderer *Renderer
	settings mandel.RenderSettings
}

func NewGate(r *Renderer, s mandel.RenderSettings) *Gate {
	return &Gate{renderer: r, settings: s}
}

func (g *Gate) Settings() mandel.RenderSettings { return g.settings }

// Render computes a frame for st.Viewport if st.NeedRerender is set.
//
// When the flag is clear it returns at once with an empty result that only
// carries the viewport and settings. A successful render clears the flag; a
// failed or stopped one leaves it set so the next call retries. Render must
// be called from the goroutine that owns st.
func (g *Gate) Render(ctx context.Context, st *mandel.AppState) (mandel.RenderResult, error) {
	if !st.NeedRerender {
		return mandel.RenderResult{Viewport: st.Viewport, Settings: g.settings}, nil
	}

	res, err := g.renderer.Render(ctx, st.Viewport, g.settings)
	if err != nil {
		return mandel.RenderResult{}, err
	}
	st.NeedRerender = false
	return res, nil
}
