package renderer

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

// MockIntegrator returns a fixed radiance and runs an optional hook on
// every call
type MockIntegrator struct {
	radiance core.Vec3
	calls    atomic.Int64
	hook     func(call int64)
}

func (m *MockIntegrator) Trace(ray core.Ray, sampler core.Sampler) integrator.TraceResult {
	call := m.calls.Add(1)
	if m.hook != nil {
		m.hook(call)
	}
	return integrator.TraceResult{Radiance: m.radiance, Bounces: 1, Termination: integrator.TerminationMiss}
}

func testOptions(width, height, spp int) Options {
	opts := DefaultOptions()
	opts.Width = width
	opts.Height = height
	opts.SamplesPerPixel = spp
	opts.TileSize = 4
	opts.NumWorkers = 4
	return opts
}

func newTestRenderer(t *testing.T, s *scene.Scene, in integrator.Integrator, opts Options) *Renderer {
	t.Helper()
	r, err := New(s, in, opts, log.Discard)
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	return r
}

func emptyScene(t *testing.T, background core.Vec3) *scene.Scene {
	t.Helper()
	b := scene.NewBuilder("test-empty")
	b.SetBackground(scene.NewConstantBackground(background))
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	return s
}

func defaultScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.NewDefaultScene()
	if err != nil {
		t.Fatalf("Failed to build default scene: %v", err)
	}
	return s
}

func TestNew_InvalidOptions(t *testing.T) {
	s := emptyScene(t, core.NewVec3(1, 1, 1))
	if _, err := New(s, nil, Options{}, log.Discard); errors.Cause(err) != ErrInvalidOptions {
		t.Errorf("Expected ErrInvalidOptions, got %v", err)
	}
	if _, err := New(nil, nil, DefaultOptions(), log.Discard); errors.Cause(err) != ErrInvalidOptions {
		t.Errorf("Expected ErrInvalidOptions for a nil scene, got %v", err)
	}
}

func TestNew_CameraUsesFrameAspectRatio(t *testing.T) {
	r := newTestRenderer(t, defaultScene(t), nil, testOptions(200, 100, 1))
	if got := r.camera.Config().AspectRatio; got != 2 {
		t.Errorf("Expected aspect ratio 2, got %f", got)
	}
}

func TestRender_ConstantIntegrator(t *testing.T) {
	mock := &MockIntegrator{radiance: core.NewVec3(0.25, 0.25, 0.25)}
	opts := testOptions(10, 7, 3)
	r := newTestRenderer(t, emptyScene(t, core.Vec3{}), mock, opts)

	result, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if calls := mock.calls.Load(); calls != 10*7*3 {
		t.Errorf("Expected %d integrator calls, got %d", 10*7*3, calls)
	}
	if result.Stats.Samples != 10*7*3 || result.Stats.CompletedPixels != 70 || result.Stats.Pixels != 70 {
		t.Errorf("Unexpected stats %+v", result.Stats)
	}
	if result.Stats.Terminations[integrator.TerminationMiss] != 210 {
		t.Errorf("Expected 210 miss terminations, got %v", result.Stats.Terminations)
	}
	if result.Stats.AverageBounces() != 1 {
		t.Errorf("Expected 1 bounce per path, got %f", result.Stats.AverageBounces())
	}

	for i, c := range result.Pixels() {
		if c != core.NewVec3(0.5, 0.5, 0.5) {
			t.Fatalf("Pixel %d: expected (0.5, 0.5, 0.5), got %v", i, c)
		}
	}
	for _, rs := range result.Regions {
		if !rs.Complete || rs.Err != nil {
			t.Errorf("Region %d: expected complete without error", rs.Region.ID)
		}
	}
}

func TestRender_UniformBackground(t *testing.T) {
	r := newTestRenderer(t, emptyScene(t, core.NewVec3(0.25, 0.25, 0.25)), nil, testOptions(8, 8, 4))
	result, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	img := result.Image()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if c := img.RGBAAt(x, y); c.R != 128 || c.G != 128 || c.B != 128 {
				t.Fatalf("Pixel (%d,%d): expected 128 grey, got %v", x, y, c)
			}
		}
	}
	if result.Stats.Terminations[integrator.TerminationMiss] != 8*8*4 {
		t.Errorf("Expected every path to miss, got %v", result.Stats.Terminations)
	}
}

func TestRender_Deterministic(t *testing.T) {
	s := defaultScene(t)
	render := func(workers int) *Result {
		opts := testOptions(16, 12, 4)
		opts.NumWorkers = workers
		result, err := newTestRenderer(t, s, nil, opts).Render(context.Background())
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		return result
	}

	first := render(4)
	second := render(4)
	if diff := cmp.Diff(first.Framebuffer.pixels, second.Framebuffer.pixels); diff != "" {
		t.Errorf("Renders with the same seed differ (-first +second):\n%s", diff)
	}

	// Streams belong to regions, not workers
	single := render(1)
	if diff := cmp.Diff(first.Framebuffer.pixels, single.Framebuffer.pixels); diff != "" {
		t.Errorf("Renders with different worker counts differ (-4 workers +1 worker):\n%s", diff)
	}

	if first.ID == second.ID {
		t.Error("Expected each render to get its own id")
	}
}

func TestRender_DegenerateTriangleLeavesImageUnchanged(t *testing.T) {
	build := func(withDegenerate bool) *scene.Scene {
		b := scene.NewBuilder("degenerate")
		red := b.AddMaterial(material.NewLambertian(material.NewConstantTexture(core.NewVec3(0.8, 0.2, 0.2))))
		b.AddSphere(core.NewVec3(0, 0, -2), 0.7, red)
		b.AddTriangle(core.NewVec3(-1, -1, -1.5), core.NewVec3(1, -1, -1.5), core.NewVec3(0, 1, -1.5), red)
		if withDegenerate {
			b.AddTriangle(core.NewVec3(-1, 0, -1.2), core.NewVec3(0, 0, -1.2), core.NewVec3(1, 0, -1.2), red)
		}
		s, err := b.Build()
		if err != nil {
			t.Fatalf("Failed to build scene: %v", err)
		}
		return s
	}

	render := func(s *scene.Scene) *Result {
		result, err := newTestRenderer(t, s, nil, testOptions(12, 12, 4)).Render(context.Background())
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		return result
	}

	without := render(build(false))
	with := render(build(true))
	if diff := cmp.Diff(without.Framebuffer.pixels, with.Framebuffer.pixels); diff != "" {
		t.Errorf("Degenerate triangle changed the image (-without +with):\n%s", diff)
	}
}

func TestRender_SeedChangesImage(t *testing.T) {
	s := defaultScene(t)
	opts := testOptions(8, 8, 2)
	a, err := newTestRenderer(t, s, nil, opts).Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	opts.Seed++
	b, err := newTestRenderer(t, s, nil, opts).Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if cmp.Equal(a.Framebuffer.pixels, b.Framebuffer.pixels) {
		t.Error("Expected different seeds to produce different samples")
	}
}

func TestRender_RegionIsolation(t *testing.T) {
	s := defaultScene(t)
	meanLuminance := func(opts Options) float64 {
		result, err := newTestRenderer(t, s, nil, opts).Render(context.Background())
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		sum := 0.0
		for y := 0; y < opts.Height; y++ {
			for x := 0; x < opts.Width; x++ {
				sum += result.Framebuffer.Pixel(x, y).Color().Luminance()
			}
		}
		return sum / float64(opts.Width*opts.Height)
	}

	one := testOptions(16, 12, 64)
	one.TileSize = 64
	rows := testOptions(16, 12, 64)
	rows.Partition = PartitionRows
	rows.Seed = 7

	a, b := meanLuminance(one), meanLuminance(rows)
	if math.Abs(a-b) > 0.03 {
		t.Errorf("Expected statistically equivalent images, got mean luminance %f vs %f", a, b)
	}
}

func TestRender_CancelledBeforeStart(t *testing.T) {
	mock := &MockIntegrator{radiance: core.NewVec3(1, 1, 1)}
	r := newTestRenderer(t, emptyScene(t, core.Vec3{}), mock, testOptions(8, 8, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Render(ctx)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Expected ErrInterrupted, got %v", err)
	}
	if result == nil || result.Stats.CompletedPixels != 0 || mock.calls.Load() != 0 {
		t.Errorf("Expected no work after cancellation, got %+v", result)
	}
}

func TestRender_CancelledBetweenPixels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The tenth trace cancels; the pixel it belongs to still finishes
	mock := &MockIntegrator{radiance: core.NewVec3(1, 1, 1), hook: func(call int64) {
		if call == 10 {
			cancel()
		}
	}}
	opts := testOptions(5, 5, 4)
	opts.NumWorkers = 1
	opts.Partition = PartitionRows
	r := newTestRenderer(t, emptyScene(t, core.Vec3{}), mock, opts)

	result, err := r.Render(ctx)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Expected ErrInterrupted, got %v", err)
	}
	if result.Stats.CompletedPixels != 3 {
		t.Errorf("Expected 3 completed pixels, got %d", result.Stats.CompletedPixels)
	}
	for x := 0; x < 3; x++ {
		if !result.Framebuffer.Complete(x, 0) || result.Framebuffer.Pixel(x, 0).Count != 4 {
			t.Errorf("Expected pixel (%d,0) complete with 4 samples", x)
		}
	}
	if result.Framebuffer.Complete(3, 0) || result.Framebuffer.Pixel(3, 0).Count != 0 {
		t.Error("Expected pixel (3,0) untouched")
	}
	if result.Regions[0].Complete {
		t.Error("Expected the interrupted region to be reported incomplete")
	}
}

func TestRender_RegionPanicIsIsolated(t *testing.T) {
	// Row 0 takes 4 calls; the first call of row 1 panics
	mock := &MockIntegrator{radiance: core.NewVec3(1, 1, 1), hook: func(call int64) {
		if call == 5 {
			panic("corrupt scene")
		}
	}}
	opts := testOptions(4, 3, 1)
	opts.NumWorkers = 1
	opts.Partition = PartitionRows
	r := newTestRenderer(t, emptyScene(t, core.Vec3{}), mock, opts)

	result, err := r.Render(context.Background())
	var regionErr *RegionError
	if !errors.As(err, &regionErr) {
		t.Fatalf("Expected a RegionError, got %v", err)
	}
	if regionErr.Region != 1 || !errors.Is(err, ErrRegionPanicked) {
		t.Errorf("Expected region 1 to have panicked, got %v", regionErr)
	}
	if result.Stats.FailedRegions != 1 {
		t.Errorf("Expected 1 failed region, got %d", result.Stats.FailedRegions)
	}
	if !result.Regions[0].Complete || result.Regions[0].Err != nil {
		t.Error("Expected region 0 to be unaffected")
	}
	for x := 0; x < 4; x++ {
		if c := result.Framebuffer.Pixel(x, 0).Color(); c != core.NewVec3(1, 1, 1) {
			t.Errorf("Pixel (%d,0) corrupted: %v", x, c)
		}
	}
}

func TestRender_NonFiniteRadianceFailsRegion(t *testing.T) {
	mock := &MockIntegrator{radiance: core.NewVec3(math.NaN(), 0, 0)}
	r := newTestRenderer(t, emptyScene(t, core.Vec3{}), mock, testOptions(4, 4, 1))

	result, err := r.Render(context.Background())
	if !errors.Is(err, ErrNonFiniteRadiance) {
		t.Fatalf("Expected ErrNonFiniteRadiance, got %v", err)
	}
	if result.Stats.FailedRegions == 0 {
		t.Error("Expected a failed region")
	}
}
