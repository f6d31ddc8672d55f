package cmd

import (
	"github.com/relex/etl-sink-agent/run"
	"github.com/relex/etl-sink-agent/util"
	"github.com/relex/gotils/logger"
)

type verifyCommandState struct {
	Config string `help:"Configuration file path"`
	Dump   bool   `help:"Print the effective configuration"`
}

var verifyCmd = verifyCommandState{
	Config: "config.yml",
	Dump:   false,
}

func (cmd *verifyCommandState) run(args []string) {
	config, err := run.LoadConfigFile(cmd.Config)
	if err != nil {
		logger.Fatalf("config: %s", err.Error())
	}

	if cmd.Dump {
		document, merr := util.MarshalYaml(config)
		if merr != nil {
			logger.Fatalf("failed to dump config: %s", merr.Error())
		}
		logger.Infof("effective configuration:\n%s", document)
	}

	logger.Infof("config OK: %s", cmd.Config)
}
