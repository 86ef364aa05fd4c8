package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Render a still frame of a built-in scene or a YAML scene file.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, opts, err := loadScene(ctx)
	if err != nil {
		return err
	}
	if err := applyFlags(ctx, &opts); err != nil {
		return err
	}

	r, err := renderer.New(sc, nil, opts, logger)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := r.Render(sigCtx)
	switch {
	case errors.Is(err, renderer.ErrInterrupted):
		logger.Warning("render interrupted, saving partial frame")
	case err != nil:
		return err
	}

	out := ctx.String("out")
	if out == "" {
		out = filepath.Join("output", sc.Name(), fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))
	}
	if err := savePNG(result, out); err != nil {
		return err
	}
	logger.Noticef("saved %s", out)

	displayFrameStats(result.Stats)
	return err
}

// loadScene picks the scene and base options from --config or --scene
func loadScene(ctx *cli.Context) (*scene.Scene, renderer.Options, error) {
	if path := ctx.String("config"); path != "" {
		file, err := config.Load(path)
		if err != nil {
			return nil, renderer.Options{}, err
		}
		opts, err := file.RenderOptions()
		if err != nil {
			return nil, opts, err
		}
		sc, err := file.BuildScene()
		return sc, opts, err
	}

	sc, err := scene.ByName(ctx.String("scene"))
	return sc, renderer.DefaultOptions(), err
}

// applyFlags overlays explicitly set command line flags on opts
func applyFlags(ctx *cli.Context, opts *renderer.Options) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"spp", &opts.SamplesPerPixel},
		{"depth", &opts.MaxDepth},
		{"rr-bounces", &opts.RussianRouletteMinBounces},
		{"workers", &opts.NumWorkers},
		{"tile", &opts.TileSize},
	}
	for _, f := range ints {
		if ctx.IsSet(f.name) {
			*f.dst = ctx.Int(f.name)
		}
	}
	if ctx.IsSet("seed") {
		opts.Seed = ctx.Uint64("seed")
	}
	if ctx.IsSet("gamma") {
		opts.Gamma = ctx.Float64("gamma")
	}
	if ctx.IsSet("partition") {
		p, err := renderer.ParsePartition(ctx.String("partition"))
		if err != nil {
			return err
		}
		opts.Partition = p
	}
	return opts.Validate()
}

func savePNG(result *renderer.Result, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	defer f.Close()

	if err := png.Encode(f, result.Image()); err != nil {
		return errors.Wrap(err, "failed to encode image")
	}
	return nil
}

func displayFrameStats(stats renderer.RenderStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Statistic", "Value"})
	table.Append([]string{"Pixels", fmt.Sprintf("%d / %d", stats.CompletedPixels, stats.Pixels)})
	table.Append([]string{"Samples", fmt.Sprintf("%d", stats.Samples)})
	table.Append([]string{"Avg bounces", fmt.Sprintf("%.2f", stats.AverageBounces())})
	table.Append([]string{"Samples/sec", fmt.Sprintf("%.0f", stats.SamplesPerSecond())})
	table.Append([]string{"Regions", fmt.Sprintf("%d (%d failed)", stats.Regions, stats.FailedRegions)})
	table.Append([]string{"Workers", fmt.Sprintf("%d", stats.Workers)})
	for t := integrator.Termination(0); t < integrator.NumTerminations; t++ {
		if n := stats.Terminations[t]; n > 0 {
			table.Append([]string{"Paths ended by " + t.String(), fmt.Sprintf("%d", n)})
		}
	}
	table.SetFooter([]string{"TOTAL", stats.Elapsed.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
