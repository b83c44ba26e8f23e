// mandelview is the desktop frontend. Hold the left mouse button to zoom in
// around the pointer, the right button to zoom out.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	mandel "github.com/marben/mandelview"
	"github.com/marben/mandelview/frame"
	"github.com/marben/mandelview/render"
	"github.com/marben/mandelview/task"
	"github.com/marben/mandelview/zoom"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	cfg := mandel.DefaultConfig()
	cfg.RegisterFlags(flag.CommandLine)
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	renderer := render.NewRenderer(cfg.Workers, render.WithStrips(cfg.StripCount()))
	defer renderer.Close()

	g := newGame(cfg, renderer)

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("mandelview")
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(cfg.FPS)

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("ebiten.RunGame: %w", err)
	}
	return nil
}

// game adapts the frame driver to ebiten's update/draw loop. ebiten paces
// Update, so the driver runs without a Pacer.
type game struct {
	cfg    mandel.Config
	driver *frame.Driver
	canvas *ebiten.Image
	pix    []byte
	status string
}

func newGame(cfg mandel.Config, renderer *render.Renderer) *game {
	g := &game{
		cfg:    cfg,
		canvas: ebiten.NewImage(cfg.Width, cfg.Height),
		pix:    make([]byte, 4*cfg.Width*cfg.Height),
	}
	st := mandel.NewAppState(cfg.Viewport)
	gate := render.NewGate(renderer, cfg.Settings())
	zc := zoom.NewController(cfg.ZoomFactor, cfg.ZoomInterval)
	g.driver = frame.NewDriver(st, gate, zc, ebitenInput{}, g, nil)
	return g
}

// Present implements mandel.Presenter.
func (g *game) Present(colors mandel.ColorGrid) error {
	if len(colors) != g.cfg.Height {
		return fmt.Errorf("frame has %d rows, window has %d", len(colors), g.cfg.Height)
	}
	frame.WriteRGBA(g.pix, colors)
	g.canvas.WritePixels(g.pix)
	return nil
}

func (g *game) Update() error {
	err := g.driver.Step(context.Background())
	switch {
	case err == nil:
		g.status = ""
	case task.IsStopped(err):
		return ebiten.Termination
	case errors.As(err, new(*frame.PresentationError)):
		return err
	default:
		// need-rerender stays set, so the next Update retries
		mandel.Logger().Warn("frame failed", "err", err)
		g.status = err.Error()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.canvas, &ebiten.DrawImageOptions{})

	st := g.driver.State()
	msg := fmt.Sprintf("TPS: %0.1f\nre [%.6g, %.6g]\nim [%.6g, %.6g]",
		ebiten.ActualTPS(), st.Viewport.Xmin, st.Viewport.Xmax, st.Viewport.Ymin, st.Viewport.Ymax)
	if g.status != "" {
		msg += "\n" + g.status
	}
	ebitenutil.DebugPrint(screen, msg)
}

func (g *game) Layout(int, int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// ebitenInput implements mandel.EventSource on top of ebiten's input state.
type ebitenInput struct{}

var trackedButtons = [...]struct {
	mouse  ebiten.MouseButton
	button mandel.Button
}{
	{ebiten.MouseButtonLeft, mandel.ButtonLeft},
	{ebiten.MouseButtonRight, mandel.ButtonRight},
}

func (ebitenInput) PollEvents() []mandel.Event {
	var evs []mandel.Event
	if ebiten.IsWindowBeingClosed() {
		evs = append(evs, mandel.Event{Kind: mandel.Closed})
	}
	for _, b := range trackedButtons {
		if inpututil.IsMouseButtonJustPressed(b.mouse) {
			evs = append(evs, mandel.Event{Kind: mandel.ButtonPressed, Button: b.button})
		}
		if inpututil.IsMouseButtonJustReleased(b.mouse) {
			evs = append(evs, mandel.Event{Kind: mandel.ButtonReleased, Button: b.button})
		}
	}
	return evs
}

func (ebitenInput) PointerPosition() (x, y int) {
	return ebiten.CursorPosition()
}
