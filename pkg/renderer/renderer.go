package renderer

import (
	"context"
	"image"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Renderer drives the integrator over every pixel of a frame. Regions are
// rendered in parallel; each owns its pixels and its random stream.
type Renderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	camera     *geometry.Camera
	opts       Options
	regions    []Region
	logger     log.Logger
}

// Result is the outcome of a render
type Result struct {
	ID          uuid.UUID
	Framebuffer *Framebuffer
	Stats       RenderStats
	Regions     []RegionStatus
	Gamma       float64
}

// Pixels returns the gamma-corrected color of every pixel, row 0 at the top
func (r *Result) Pixels() []core.Vec3 {
	return r.Framebuffer.Resolve(r.Gamma)
}

// Image returns the gamma-corrected frame as an RGBA image
func (r *Result) Image() *image.RGBA {
	return r.Framebuffer.Image(r.Gamma)
}

// New creates a renderer. A nil integrator selects a PathTracer configured
// from opts; a nil logger selects the package logger. The scene camera's
// aspect ratio is replaced by the frame's.
func New(s *scene.Scene, in integrator.Integrator, opts Options, logger log.Logger) (*Renderer, error) {
	if s == nil {
		return nil, errors.Wrap(ErrInvalidOptions, "nil scene")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if in == nil {
		in = integrator.NewPathTracer(s, opts.IntegratorConfig())
	}
	if logger == nil {
		logger = log.New("renderer")
	}

	cameraConfig := s.Camera()
	cameraConfig.AspectRatio = float64(opts.Width) / float64(opts.Height)

	return &Renderer{
		scene:      s,
		integrator: in,
		camera:     geometry.NewCamera(cameraConfig),
		opts:       opts,
		regions:    NewRegions(opts.Width, opts.Height, opts.Partition, opts.TileSize),
		logger:     logger,
	}, nil
}

// Options returns the render options
func (r *Renderer) Options() Options {
	return r.opts
}

// Regions returns the region layout
func (r *Renderer) Regions() []Region {
	out := make([]Region, len(r.regions))
	copy(out, r.regions)
	return out
}

// Render renders the frame. Cancelling ctx stops workers between pixels;
// the partial result is returned along with an error wrapping
// ErrInterrupted. A failing region stops the render and its *RegionError is
// returned with the partial result.
func (r *Renderer) Render(ctx context.Context) (*Result, error) {
	id := uuid.New()
	workers := r.opts.Workers()
	fb := NewFramebuffer(r.opts.Width, r.opts.Height)
	statuses := make([]RegionStatus, len(r.regions))

	r.logger.Infof("render %s: %dx%d, %d spp, %d workers, %d regions (%s)",
		id, r.opts.Width, r.opts.Height, r.opts.SamplesPerPixel, workers, len(r.regions), r.opts.Partition)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range r.regions {
		statuses[i].Region = r.regions[i]
		g.Go(func() error {
			return r.renderRegion(gctx, fb, &statuses[i])
		})
	}
	err := g.Wait()

	result := &Result{
		ID:          id,
		Framebuffer: fb,
		Stats:       collectStats(image.Rect(0, 0, r.opts.Width, r.opts.Height), statuses, workers, time.Since(start)),
		Regions:     statuses,
		Gamma:       r.opts.Gamma,
	}

	if err != nil {
		r.logger.Errorf("render %s failed: %v", id, err)
		return result, err
	}
	if ctx.Err() != nil && result.Stats.CompletedPixels < result.Stats.Pixels {
		r.logger.Warningf("render %s interrupted: %d/%d pixels complete",
			id, result.Stats.CompletedPixels, result.Stats.Pixels)
		return result, errors.Wrapf(ErrInterrupted, "%v", ctx.Err())
	}

	r.logger.Infof("render %s finished in %s (%d samples, %.2f avg bounces)",
		id, result.Stats.Elapsed, result.Stats.Samples, result.Stats.AverageBounces())
	return result, nil
}

// renderRegion renders every pixel of one region. Cancellation is checked
// between pixels, never mid-path.
func (r *Renderer) renderRegion(ctx context.Context, fb *Framebuffer, status *RegionStatus) (err error) {
	region := status.Region
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = errors.Wrapf(ErrRegionPanicked, "%v", p)
		}
		if err != nil {
			err = &RegionError{Region: region.ID, Bounds: region.Bounds, Err: err}
			status.Err = err
		}
		status.Elapsed = time.Since(start)
	}()

	sampler := core.NewSampler(r.opts.Seed, uint64(region.ID))
	width, height := float64(r.opts.Width), float64(r.opts.Height)

	for y := region.Bounds.Min.Y; y < region.Bounds.Max.Y; y++ {
		for x := region.Bounds.Min.X; x < region.Bounds.Max.X; x++ {
			if ctx.Err() != nil {
				return nil
			}

			for sample := 0; sample < r.opts.SamplesPerPixel; sample++ {
				// Jittered normalized coordinates; t = 0 is the bottom row
				jitter := sampler.Get2D()
				s := (float64(x) + jitter.X) / width
				t := 1 - (float64(y)+jitter.Y)/height

				result := r.integrator.Trace(r.camera.GenerateRay(s, t, sampler), sampler)
				if !result.Radiance.IsFinite() {
					return errors.Wrapf(ErrNonFiniteRadiance, "pixel (%d,%d): %v", x, y, result.Radiance)
				}
				fb.addSample(x, y, result.Radiance)
				status.record(result)
			}

			fb.markComplete(x, y)
			status.Pixels++
		}
	}

	status.Complete = true
	return nil
}
