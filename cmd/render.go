package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"math"
	"os"
	"time"

	"github.com/janlaff/voxel-engine/asset/reader"
	"github.com/janlaff/voxel-engine/renderer"
	"github.com/janlaff/voxel-engine/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Load the scene passed as the command argument and set up its camera for
// the requested frame size and orbit angles (in degrees).
func setupScene(ctx *cli.Context, opts renderer.Options) (*scene.Scene, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("missing scene file argument")
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, renderer.ErrInvalidFrameSize
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return nil, err
	}

	sc.Camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))
	sc.Camera.Orbit(degToRad(ctx.Float64("yaw")), degToRad(ctx.Float64("pitch")))
	return sc, nil
}

func renderOptions(ctx *cli.Context) renderer.Options {
	return renderer.Options{
		FrameW:  uint32(ctx.Int("width")),
		FrameH:  uint32(ctx.Int("height")),
		Workers: ctx.Int("workers"),
	}
}

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderOptions(ctx)
	sc, err := setupScene(ctx, opts)
	if err != nil {
		return err
	}
	logger.Infof("rendering with %s", sc.Camera)

	r, err := renderer.NewDefault(sc.Octree, sc.Camera.Inverse(), renderer.NewPerfectScheduler(), opts)
	if err != nil {
		return err
	}

	frame, err := r.Render(context.Background())
	if err != nil {
		return err
	}

	// Export PNG
	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err = png.Encode(f, frame); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1e6)

	// Display stats
	displayFrameStats(r.Stats())

	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Block height", "% of frame", "Hits", "Avg iterations", "Render time"})

	var rays, hits, iterations uint64
	for _, stat := range stats.Blocks {
		var avgIterations float64
		if stat.Rays != 0 {
			avgIterations = float64(stat.Iterations) / float64(stat.Rays)
		}
		table.Append([]string{
			fmt.Sprintf("%d", stat.Worker),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%d/%d", stat.Hits, stat.Rays),
			fmt.Sprintf("%3.1f", avgIterations),
			stat.RenderTime.String(),
		})
		rays += stat.Rays
		hits += stat.Hits
		iterations += stat.Iterations
	}

	var avgIterations float64
	if rays != 0 {
		avgIterations = float64(iterations) / float64(rays)
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%d/%d", hits, rays), fmt.Sprintf("%3.1f", avgIterations), stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}

func degToRad(deg float64) float32 {
	return float32(deg * math.Pi / 180)
}
