package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/df07/go-pathtracer/web/server"
	"github.com/urfave/cli"
)

// Serve runs the render web server until interrupted.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(ctx.Int("port"), logger)
	limits := server.DefaultLimits()
	if v := ctx.Int("max-spp"); v > 0 {
		limits.MaxSamples = v
	}
	srv.SetLimits(limits)

	return srv.Start(sigCtx)
}
