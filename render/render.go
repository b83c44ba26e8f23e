// Package render computes frames by splitting them into strips, evaluating
// the strips on a worker pool and joining the results.
package render

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	mandel "github.com/marben/mandelview"
	"github.com/marben/mandelview/task"
)

// regionFunc evaluates one region into dst.
type regionFunc func(ctx context.Context, dst mandel.PixelMatrix, v mandel.Viewport, s mandel.RenderSettings, r mandel.PixelRegion) error

type Renderer struct {
	pool    *task.Pool
	strips  int
	compute regionFunc
}

type Option func(*Renderer)

// WithStrips sets the number of strips per frame. The default is one per worker.
func WithStrips(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.strips = n
		}
	}
}

// NewRenderer starts a worker pool of the given size.
func NewRenderer(workers int, opts ...Option) *Renderer {
	pool := task.NewPool(workers)
	r := &Renderer{
		pool:    pool,
		strips:  pool.Workers(),
		compute: mandel.ComputeRegionInto,
	}
	for _, o := range opts {
		o(r)
	}
	mandel.Logger().Info("renderer started", "workers", pool.Workers(), "strips", r.strips)
	return r
}

// Close stops the worker pool after in-flight strips finish.
func (r *Renderer) Close() { r.pool.Close() }

func (r *Renderer) Workers() int { return r.pool.Workers() }
func (r *Renderer) Strips() int  { return r.strips }

// RenderAsync computes one frame. v and s are copied into every strip task.
//
// Full-frame buffers are allocated before fan-out and each strip writes only
// its own rows, so the join needs no copying and no locking. The returned
// future fails with the first strip error and is stopped if ctx is done
// before all strips finish; in both cases the buffers are dropped.
func (r *Renderer) RenderAsync(ctx context.Context, v mandel.Viewport, s mandel.RenderSettings) *task.Future[mandel.RenderResult] {
	if err := s.Validate(); err != nil {
		return task.Fail[mandel.RenderResult](err)
	}
	if err := v.Validate(); err != nil {
		return task.Fail[mandel.RenderResult](err)
	}

	start := time.Now()
	regions := mandel.Partition(s.Height, s.Width, min(r.strips, s.Height))
	pixels := mandel.NewPixelMatrix(s.Height, s.Width)
	colors := mandel.NewColorGrid(s.Height, s.Width)

	strips := make([]*task.Future[mandel.PixelRegion], len(regions))
	for i, region := range regions {
		dst := pixels.Sub(region)
		computed := task.Spawn(ctx, r.pool, func(ctx context.Context) (mandel.PixelRegion, error) {
			return region, r.computeStrip(ctx, dst, v, s, region)
		})
		strips[i] = task.Then(computed, func(region mandel.PixelRegion) (mandel.PixelRegion, error) {
			mandel.Colorize(colors.Sub(region), dst, s.MaxIterations)
			return region, nil
		})
	}

	joined := task.WhenAll(ctx, strips...)
	return task.Then(joined, func([]mandel.PixelRegion) (mandel.RenderResult, error) {
		mandel.Logger().Debug("frame rendered",
			"viewport", v.String(), "strips", len(regions), "took", time.Since(start))
		return mandel.RenderResult{
			Viewport: v,
			Settings: s,
			Pixels:   pixels,
			Colors:   colors,
		}, nil
	})
}

// computeStrip runs r.compute and reports anything but cancellation as a
// *mandel.ComputationError for region.
func (r *Renderer) computeStrip(ctx context.Context, dst mandel.PixelMatrix, v mandel.Viewport, s mandel.RenderSettings, region mandel.PixelRegion) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &mandel.ComputationError{Region: region, Err: &task.PanicError{Value: p, Stack: debug.Stack()}}
		}
	}()

	err = r.compute(ctx, dst, v, s, region)
	var ce *mandel.ComputationError
	switch {
	case err == nil, errors.As(err, &ce):
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
	default:
		err = &mandel.ComputationError{Region: region, Err: err}
	}
	return err
}

// Render is RenderAsync followed by a wait on ctx.
func (r *Renderer) Render(ctx context.Context, v mandel.Viewport, s mandel.RenderSettings) (mandel.RenderResult, error) {
	return r.RenderAsync(ctx, v, s).Await(ctx)
}
