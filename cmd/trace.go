package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/janlaff/voxel-engine/asset/reader"
	"github.com/janlaff/voxel-engine/tracer"
	"github.com/janlaff/voxel-engine/types"
	"github.com/urfave/cli"
)

// Trace a single ray with both the ESVO tracer and the reference tracer and
// display the results.
func TraceRay(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return fmt.Errorf("missing scene file argument")
	}

	origin, err := parseVec3(ctx.String("origin"))
	if err != nil {
		return fmt.Errorf("invalid origin: %s", err.Error())
	}
	dir, err := parseVec3(ctx.String("dir"))
	if err != nil {
		return fmt.Errorf("invalid direction: %s", err.Error())
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	ray := tracer.Ray{Origin: origin, Direction: tracer.ClampDirection(dir)}
	esvo := tracer.Trace(ray, sc.Octree)
	ref := tracer.TraceReference(ray, sc.Octree)

	logger.Noticef("esvo:      %s", esvo)
	logger.Noticef("reference: %s", ref)
	if esvo.Hit != ref.Hit || (esvo.Hit && esvo.Voxel(sc.Octree) != ref.Voxel(sc.Octree)) {
		logger.Warning("tracers disagree")
	}
	return nil
}

// Parse a vector in "x,y,z" format.
func parseVec3(s string) (types.Vec3, error) {
	var v types.Vec3
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected 3 comma separated components; got %q", s)
	}
	for idx, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return v, err
		}
		v[idx] = float32(f)
	}
	return v, nil
}
