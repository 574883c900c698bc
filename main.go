package main

import (
	"fmt"
	"os"

	"github.com/janlaff/voxel-engine/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	renderFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "number of render workers (0 uses one worker per CPU)",
		},
	}

	app := cli.NewApp()
	app.Name = "voxel-engine"
	app.Usage = "render sparse voxel octrees using ray traversal"
	app.Version = "0.0.1"
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
			Name:  "compile",
			Usage: "compile MagicaVoxel models into the binary octree format",
			Description: `
Parse one or more MagicaVoxel .vox models, build a sparse voxel octree for each
one and write it together with the default camera to a zstd compressed .svo
archive next to the input file.

The compiled archive can be supplied as an argument to the other commands.

Child pointers address at most 32767 indirect (far) slots. Dense models close to
the 256^3 limit may exceed this and fail with a "requires N far pointers" error;
sparse and surface models of that size compile fine.`,
			ArgsUsage: "model1.vox model2.vox ...",
			Action:    cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "print octree and camera information for a scene",
			ArgsUsage: "scene.{vox,svo}",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:        "render",
			Usage:       "render single frame",
			Description: `Render a single frame and save it as a png image.`,
			ArgsUsage:   "scene.{vox,svo}",
			Flags: append([]cli.Flag{
				cli.Float64Flag{
					Name:  "yaw",
					Usage: "orbit the camera around its target by this angle (degrees)",
				},
				cli.Float64Flag{
					Name:  "pitch",
					Usage: "tilt the camera around its target by this angle (degrees)",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			}, renderFlags...),
			Action: cmd.RenderFrame,
		},
		{
			Name:  "trace",
			Usage: "trace a single ray and compare the result against the reference tracer",
			Description: `
Coordinates are given in the octree frame where the root cube spans [-1, 1]
on every axis.`,
			ArgsUsage: "scene.{vox,svo}",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "origin",
					Value: "-3,-3,-3",
					Usage: "ray origin as x,y,z",
				},
				cli.StringFlag{
					Name:  "dir",
					Value: "1,1,1",
					Usage: "ray direction as x,y,z",
				},
			},
			Action: cmd.TraceRay,
		},
		{
			Name:  "serve",
			Usage: "serve rendered frames over http",
			Description: `
Endpoints:
  GET /api/frame.png?width=&height=&yaw=&pitch=  render a frame
  GET /api/stats                                 stats for the last frame
  GET /api/scene                                 scene information
  GET /api/trace?origin=x,y,z&dir=x,y,z          trace a single ray`,
			ArgsUsage: "scene.{vox,svo}",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "addr",
					Value: "localhost:8080",
					Usage: "address to listen on",
				},
			}, renderFlags...),
			Action: cmd.ServeScene,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
