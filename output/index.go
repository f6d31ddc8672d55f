// Package output registers the list of all batch writer implementations
package output

import (
	"github.com/relex/etl-sink-agent/base/bconfig"
	"github.com/relex/etl-sink-agent/output/jsonfile"
	"github.com/relex/etl-sink-agent/output/nullsink"
	"github.com/relex/etl-sink-agent/output/postgres"
)

func init() {
	bconfig.RegisterOutputConfigConstructors(bconfig.OutputConfigCreatorTable{
		"postgres": func() bconfig.OutputConfig { return &postgres.Config{} },
		"jsonFile": func() bconfig.OutputConfig { return &jsonfile.Config{} },
		"null":     func() bconfig.OutputConfig { return &nullsink.Config{} },
	})
}

// Register registers all output config types
func Register() {
	// trigger init()
}
