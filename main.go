package main

import (
	"fmt"
	"os"

	"github.com/df07/go-bdpt-renderer/cmd"
	"github.com/urfave/cli"
)

func newApp() *cli.App {
	// -v is taken by verbose logging
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}

	app := cli.NewApp()
	app.Name = "bdpt-renderer"
	app.Usage = "render scenes with path tracing and bidirectional path tracing"
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

	sceneFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "scene, s",
			Value: "cornell",
			Usage: "built-in scene ID, PBRT file, or name of a PBRT file in the scene directory",
		},
		cli.StringFlag{
			Name:  "scene-dir",
			Value: "scenes",
			Usage: "directory searched for PBRT scenes",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame",
			Description: `
Render a built-in scene or a PBRT scene description into a PNG image.

Flags that are not given fall back to the values stored in the scene and
then to the renderer defaults.`,
			ArgsUsage: "[scene]",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Usage: "PBRT scene file, overrides --scene",
				},
				cli.IntFlag{
					Name:  "width",
					Usage: "frame width (default: scene width)",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "frame height (default: scene height)",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: 16,
					Usage: "samples per pixel",
				},
				cli.IntFlag{
					Name:  "max-depth",
					Value: 5,
					Usage: "maximum number of bounces",
				},
				cli.IntFlag{
					Name:  "rr-depth",
					Value: 3,
					Usage: "bounce at which Russian roulette may start",
				},
				cli.StringFlag{
					Name:  "integrator, i",
					Value: "bdpt",
					Usage: "light transport algorithm: path, bdpt, direct or direct-one",
				},
				cli.StringFlag{
					Name:  "sampler",
					Value: "stratified",
					Usage: "pixel sampler: stratified or random",
				},
				cli.StringFlag{
					Name:  "filter",
					Value: "box",
					Usage: "reconstruction filter: box, triangle or gaussian",
				},
				cli.Float64Flag{
					Name:  "filter-radius",
					Value: 0.5,
					Usage: "reconstruction filter radius in pixels",
				},
				cli.StringFlag{
					Name:  "light-sampler",
					Usage: "light selection: uniform or power (default: scene setting)",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Usage: "number of render workers (default: number of CPUs)",
				},
				cli.IntFlag{
					Name:  "tile-size",
					Value: 16,
					Usage: "tile edge length in pixels",
				},
				cli.Uint64Flag{
					Name:  "seed",
					Usage: "seed of the master sampler",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "image filename (default: output/<scene>/render_<timestamp>.png)",
				},
				cli.BoolFlag{
					Name:  "stats",
					Usage: "print render statistics",
				},
			}, sceneFlags...),
			Action: cmd.Render,
		},
		{
			Name:   "scenes",
			Usage:  "list available scenes",
			Flags:  sceneFlags[1:],
			Action: cmd.ListScenes,
		},
		{
			Name:  "bench-bvh",
			Usage: "build the BVH of a scene and time camera ray queries",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "rays",
					Value: 100000,
					Usage: "number of camera rays to trace",
				},
				cli.IntFlag{
					Name:  "leaf-size",
					Value: 4,
					Usage: "maximum primitives per BVH leaf",
				},
				cli.Uint64Flag{
					Name:  "seed",
					Usage: "seed for the ray generator",
				},
			}, sceneFlags...),
			Action: cmd.BenchBVH,
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
