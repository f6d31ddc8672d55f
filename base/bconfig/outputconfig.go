package bconfig

import (
	"fmt"

	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/etl-sink-agent/util"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"gopkg.in/yaml.v3"
)

// OutputConfig provides an interface for the configuration of BatchWriter implementations
//
// All the implementations should support YAML unmarshalling
type OutputConfig interface {
	GetType() string

	NewWriter(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (base.BatchWriter, error)

	VerifyConfig() error
}

// OutputConfigHolder holds an interface to the actual OutputConfig
//
// The medium is used to support YAML unmarshalling of interfaces
type OutputConfigHolder struct {
	Location string `yaml:"-"`
	Value    OutputConfig
}

// OutputConfigCreatorTable provides a map of output types to their config constructors
type OutputConfigCreatorTable map[string]func() OutputConfig

var outputConfigCreators = make(OutputConfigCreatorTable)

// RegisterOutputConfigConstructors registers config constructors for output types
//
// Each type name can only be registered once
func RegisterOutputConfigConstructors(table OutputConfigCreatorTable) {
	for typeName, createFunc := range table {
		if _, exists := outputConfigCreators[typeName]; exists {
			logger.Panicf("already registered output type '%s'", typeName)
		}
		outputConfigCreators[typeName] = createFunc
	}
}

func (holder OutputConfigHolder) String() string {
	return fmt.Sprint(holder.Value)
}

// MarshalYAML provides custom marshalling to export readable document. The result is not reversible.
func (holder OutputConfigHolder) MarshalYAML() (interface{}, error) {
	return holder.Value, nil
}

// UnmarshalYAML provides custom unmarshalling for the implementations of OutputConfig
func (holder *OutputConfigHolder) UnmarshalYAML(value *yaml.Node) error {
	if len(value.Content) < 2 {
		return util.NewYamlError(value, ".type is undefined")
	}
	if value.Content[0].Kind != yaml.ScalarNode || value.Content[0].Value != "type" {
		return util.NewYamlError(value, fmt.Sprintf(".type is not the first property, which is: %v", value.Content[0]))
	}
	typeName := value.Content[1].Value

	createFunc, found := outputConfigCreators[typeName]
	if !found {
		return util.NewYamlError(value, fmt.Sprintf(".type: unsupported '%s'", typeName))
	}
	holder.Value = createFunc()

	if err := value.Decode(holder.Value); err != nil {
		return util.NewYamlError(value, err.Error())
	}
	holder.Location = util.GetYamlLocation(value)
	return nil
}
