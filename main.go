package main

import (
	"fmt"
	"os"

	"github.com/df07/go-pathtracer/cmd"
	"github.com/urfave/cli"
)

func sceneFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "scene, s",
			Value: "default",
			Usage: "built-in scene name (see list-scenes)",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML file with render options and a scene; overrides --scene",
		},
	}
}

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "pathtracer"
	app.Usage = "render scenes using Monte Carlo path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame",
			Description: `Render a frame and write it as a PNG. Flags that are set explicitly
override the values from --config.

Output defaults to output/<scene>/render_<timestamp>.png.`,
			Flags: append(sceneFlags(),
				cli.IntFlag{
					Name:  "width",
					Value: 400,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 225,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: 100,
					Usage: "samples per pixel",
				},
				cli.IntFlag{
					Name:  "depth",
					Value: 50,
					Usage: "maximum surface interactions per path",
				},
				cli.IntFlag{
					Name:  "rr-bounces",
					Value: 5,
					Usage: "bounces before russian roulette may end a path",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Usage: "parallel workers (0 = number of CPUs)",
				},
				cli.StringFlag{
					Name:  "partition",
					Value: "tiles",
					Usage: "work partition: tiles or rows",
				},
				cli.IntFlag{
					Name:  "tile",
					Value: 32,
					Usage: "tile edge in pixels",
				},
				cli.Uint64Flag{
					Name:  "seed",
					Value: 42,
					Usage: "random seed; equal seeds give identical images",
				},
				cli.Float64Flag{
					Name:  "gamma",
					Value: 2.0,
					Usage: "output gamma (1 disables correction)",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "image filename for the rendered frame",
				},
			),
			Action: cmd.RenderFrame,
		},
		{
			Name:   "list-scenes",
			Usage:  "list built-in scenes",
			Action: cmd.ListScenes,
		},
		{
			Name:  "bvh",
			Usage: "show bounding volume hierarchy statistics for a scene",
			Flags: append(sceneFlags(),
				cli.IntFlag{
					Name:  "verify",
					Usage: "cross-check this many random rays against a linear scan",
				},
				cli.Uint64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random seed for --verify rays",
				},
			),
			Action: cmd.ShowBVHInfo,
		},
		{
			Name:  "serve",
			Usage: "serve renders over HTTP",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "port, p",
					Value: 8080,
					Usage: "port to listen on",
				},
				cli.IntFlag{
					Name:  "max-spp",
					Usage: "cap on samples per pixel for a single request",
				},
			},
			Action: cmd.Serve,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
