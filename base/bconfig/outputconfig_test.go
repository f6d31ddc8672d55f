package bconfig

import (
	"testing"

	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/etl-sink-agent/util"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutputConfig struct {
	Header   `yaml:",inline"`
	Endpoint string `yaml:"endpoint"`
}

func (cfg *fakeOutputConfig) NewWriter(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (base.BatchWriter, error) {
	return nil, nil
}

func (cfg *fakeOutputConfig) VerifyConfig() error {
	return nil
}

func init() {
	RegisterOutputConfigConstructors(OutputConfigCreatorTable{
		"fake": func() OutputConfig { return &fakeOutputConfig{} },
	})
}

func TestOutputConfigHolderUnmarshal(t *testing.T) {
	holder := OutputConfigHolder{}
	require.NoError(t, util.UnmarshalYamlString(`
type: fake
endpoint: localhost:5000
`, &holder))

	fake, isFake := holder.Value.(*fakeOutputConfig)
	require.True(t, isFake)
	assert.Equal(t, "fake", fake.GetType())
	assert.Equal(t, "localhost:5000", fake.Endpoint)
	assert.NotEmpty(t, holder.Location)
}

func TestOutputConfigHolderRejectsUnknownType(t *testing.T) {
	holder := OutputConfigHolder{}
	err := util.UnmarshalYamlString(`
type: carrier-pigeon
`, &holder)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported 'carrier-pigeon'")
}

func TestOutputConfigHolderRequiresLeadingType(t *testing.T) {
	holder := OutputConfigHolder{}
	err := util.UnmarshalYamlString(`
endpoint: localhost:5000
type: fake
`, &holder)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".type is not the first property")
}
