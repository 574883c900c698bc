package cmd

import (
	"github.com/janlaff/voxel-engine/log"
	"github.com/urfave/cli"
)

var logger = log.New("voxel-engine")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
