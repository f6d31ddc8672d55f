// Package cmd provides the list of commands
package cmd

import (
	"github.com/relex/gotils/config"
)

func init() {
	config.AddParentCmdWithArgs("", "etl-sink-agent loads tagged record streams into a downstream store and re-emits checkpoints once safe", &rootCmd, rootCmd.preRun, rootCmd.postRun)
	config.AddCmdWithArgs("run ...", "Run the sink over standard input", &runCmd, runCmd.run)
	config.AddCmdWithArgs("verify ...", "Verify the configuration file and exit", &verifyCmd, verifyCmd.run)
}

// Execute parses the command line and runs the specified command
func Execute() {
	// trigger init

	config.Execute()
}
