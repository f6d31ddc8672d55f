package cmd

import (
	"context"
	"os"

	"github.com/relex/etl-sink-agent/run"
	"github.com/relex/etl-sink-agent/util"
	"github.com/relex/gotils/logger"
)

type runCommandState struct {
	Config      string `help:"Configuration file path"`
	MetricsAddr string `help:"The listener address to expose Prometheus metrics and debug information"`
}

var runCmd = runCommandState{
	Config:      "config.yml",
	MetricsAddr: ":9339",
}

func (cmd *runCommandState) run(args []string) {
	msrv := util.LaunchMetricsListener(cmd.MetricsAddr)

	// checkpoints go to stdout, logs to stderr; the upstream producer owns stdin
	if err := run.Run(cmd.Config, os.Stdin, os.Stdout); err != nil {
		logger.Fatalf("run: %s", err.Error())
	}

	if err := msrv.Shutdown(context.Background()); err != nil {
		logger.Errorf("error shutting down metrics listener: %v", err)
	}
}
