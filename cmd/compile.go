package cmd

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/janlaff/voxel-engine/asset/reader"
	"github.com/janlaff/voxel-engine/asset/writer"
	"github.com/urfave/cli"
)

// Compile vox models to the binary octree format.
func CompileScene(ctx *cli.Context) error {
	setupLogging(ctx)

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		if strings.ToLower(filepath.Ext(sceneFile)) != ".vox" {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		logger.Noticef("building octree for: %s", sceneFile)
		sc, err := reader.ReadScene(sceneFile)
		if err != nil {
			return err
		}

		logger.Noticef("scene information:\n%s", sc.Stats())

		svoFile := strings.TrimSuffix(sceneFile, filepath.Ext(sceneFile)) + ".svo"
		err = writer.WriteScene(sc, svoFile)
		if err != nil {
			return err
		}
	}

	return nil
}

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", sc.Stats())
	return nil
}
