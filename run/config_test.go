package run

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/relex/etl-sink-agent/output/jsonfile"
	"github.com/relex/etl-sink-agent/output/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
streams:
  include: ["cat*", "dogs"]
  exclude: ["_*"]
buffer:
  maxRecords: 500
  maxBufSize: 8MB
checkpoints:
  emit: true
  maxWatermarkLag: 2000
output:
  type: postgres
  connection: postgres://sink@localhost/warehouse?sslmode=disable
  tableSchema: staging
  tablePrefix: tap_
`)
	config, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"cat*", "dogs"}, config.Streams.Include)
	assert.Equal(t, []string{"_*"}, config.Streams.Exclude)
	assert.Equal(t, 500, config.Buffer.MaxRecords)
	assert.Equal(t, uint64(8*1024*1024), config.Buffer.MaxBufSize.Bytes())

	settings := config.Checkpoints.TrackerSettings()
	assert.True(t, settings.EmitCheckpoints)
	assert.Equal(t, uint64(2000), settings.MaxWatermarkLag)

	pgConfig, isPostgres := config.Output.Value.(*postgres.Config)
	require.True(t, isPostgres)
	assert.Equal(t, "postgres", pgConfig.GetType())
	assert.Equal(t, "staging", pgConfig.TableSchema)
	assert.Equal(t, "tap_", pgConfig.TablePrefix)
}

func TestLoadConfigFileDefaults(t *testing.T) {
	path := writeConfigFile(t, `
output:
  type: jsonFile
  directory: /tmp/etl-sink-out
`)
	config, err := LoadConfigFile(path)
	require.NoError(t, err)

	settings := config.Checkpoints.TrackerSettings()
	assert.True(t, settings.EmitCheckpoints, "emission defaults to on")
	assert.Greater(t, settings.MaxWatermarkLag, uint64(0))
	assert.Greater(t, config.Buffer.MaxRecords, 0, "buffer bounds are filled in")

	_, isFile := config.Output.Value.(*jsonfile.Config)
	assert.True(t, isFile)
}

func TestLoadConfigFileErrors(t *testing.T) {
	for name, content := range map[string]string{
		"missing output": `
buffer:
  maxRecords: 10
`,
		"unknown output type": `
output:
  type: kafka
`,
		"incomplete output": `
output:
  type: postgres
`,
		"unknown field": `
outputs:
  type: "null"
`,
		"bad stream pattern": `
streams:
  include: ["[unclosed"]
output:
  type: "null"
`,
	} {
		path := writeConfigFile(t, content)
		_, err := LoadConfigFile(path)
		assert.Error(t, err, name)
	}
}

func TestCheckpointsConfigEmitOff(t *testing.T) {
	off := false
	cfg := CheckpointsConfig{Emit: &off}
	assert.False(t, cfg.TrackerSettings().EmitCheckpoints)
}
