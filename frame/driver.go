// Package frame runs the interactive session loop: drain input, zoom,
// render if needed, present, pace.
package frame

import (
	"context"
	"errors"
	"fmt"
	"time"

	mandel "github.com/marben/mandelview"
	"github.com/marben/mandelview/render"
	"github.com/marben/mandelview/task"
	"github.com/marben/mandelview/zoom"
)

// PresentationError wraps a failure of the Presenter.
type PresentationError struct {
	Err error
}

func (e *PresentationError) Error() string { return "present frame: " + e.Err.Error() }
func (e *PresentationError) Unwrap() error { return e.Err }

// DefaultMaxFailures is how many frames in a row may fail to compute before Run gives up.
const DefaultMaxFailures = 3

// Driver owns the session's AppState. Every method must be called from one goroutine.
type Driver struct {
	state     *mandel.AppState
	gate      *render.Gate
	zoom      *zoom.Controller
	events    mandel.EventSource
	presenter mandel.Presenter
	pacer     mandel.Pacer

	MaxFailures int
	failures    int
	frames      int
}

// NewDriver wires one session. pacer may be nil when the caller paces itself.
func NewDriver(st *mandel.AppState, gate *render.Gate, zc *zoom.Controller, events mandel.EventSource, presenter mandel.Presenter, pacer mandel.Pacer) *Driver {
	return &Driver{
		state:       st,
		gate:        gate,
		zoom:        zc,
		events:      events,
		presenter:   presenter,
		pacer:       pacer,
		MaxFailures: DefaultMaxFailures,
	}
}

// State returns a copy of the session state.
func (d *Driver) State() mandel.AppState { return *d.state }

// Frames counts presented frames.
func (d *Driver) Frames() int { return d.frames }

// Step runs one cycle. It returns an error matching task.ErrStopped once the
// session should exit, a *PresentationError if presenting failed, or the
// render error of a frame that could not be computed.
func (d *Driver) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", task.ErrStopped, context.Cause(ctx))
	}

	st := d.state
	for _, ev := range d.events.PollEvents() {
		if ev.Kind == mandel.Closed {
			st.ShouldExit = true
			continue
		}
		d.zoom.HandleEvent(st, ev)
	}
	if st.ShouldExit {
		return task.ErrStopped
	}

	x, y := d.events.PointerPosition()
	d.zoom.Tick(st, x, y, d.gate.Settings())

	start := time.Now()
	res, err := d.gate.Render(ctx, st)
	if err != nil {
		return fmt.Errorf("render frame: %w", err)
	}

	if !res.Empty() {
		if err := d.presenter.Present(res.Colors); err != nil {
			return &PresentationError{Err: err}
		}
		d.frames++
		mandel.Logger().Debug("frame presented", "frame", d.frames, "took", time.Since(start))
	}

	if d.pacer != nil {
		d.pacer.Wait()
	}
	return nil
}

// Run steps until the session exits or ctx is done. Computation failures are
// retried on the next cycle up to MaxFailures in a row; presentation failures
// end the loop.
func (d *Driver) Run(ctx context.Context) error {
	for {
		err := d.Step(ctx)
		switch {
		case err == nil:
			d.failures = 0
		case task.IsStopped(err):
			return nil
		case errors.As(err, new(*PresentationError)):
			return err
		default:
			d.failures++
			mandel.Logger().Warn("frame failed", "err", err, "attempt", d.failures)
			if d.failures >= d.MaxFailures {
				return err
			}
		}
	}
}
