package run

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relex/gotils/promexporter/promreg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFileText(t *testing.T, path string) string {
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestRunEndToEnd(t *testing.T) {
	outputDir := t.TempDir()
	configPath := writeConfigFile(t, `
streams:
  exclude: ["_*"]
buffer:
  maxRecords: 2
output:
  type: jsonFile
  directory: `+outputDir+`
`)

	input := strings.Join([]string{
		`{"type": "SCHEMA", "stream": "cats", "schema": {"properties": {"id": {"type": "integer"}}}, "key_properties": ["id"]}`,
		`{"type": "SCHEMA", "stream": "_audit", "schema": {"properties": {}}}`,
		`{"type": "RECORD", "stream": "cats", "record": {"id": 1}}`,
		`{"type": "RECORD", "stream": "_audit", "record": {"id": 99}}`,
		`{"type": "RECORD", "stream": "cats", "record": {"id": 2}}`,
		`{"type": "STATE", "value": {"bookmarks": {"cats": 2}}}`,
		`{"type": "RECORD", "stream": "cats", "record": {"id": 3}}`,
		`{"type": "STATE", "value": {"bookmarks": {"cats": 3}}}`,
	}, "\n")

	checkpoints := &bytes.Buffer{}
	require.NoError(t, Run(configPath, strings.NewReader(input), checkpoints))

	lines := strings.Split(strings.TrimRight(checkpoints.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"bookmarks":{"cats":2}}`, lines[0])
	assert.Equal(t, `{"bookmarks":{"cats":3}}`, lines[1])

	records := 0
	for _, line := range strings.Split(readFileText(t, filepath.Join(outputDir, "cats.ndjson")), "\n") {
		if len(strings.TrimSpace(line)) > 0 {
			records++
		}
	}
	assert.Equal(t, 3, records)

	// the filtered stream never reached the writer
	assert.NoFileExists(t, filepath.Join(outputDir, "_audit.ndjson"))
}

func TestRunRecordBeforeSchema(t *testing.T) {
	outputDir := t.TempDir()
	configPath := writeConfigFile(t, `
output:
  type: jsonFile
  directory: `+outputDir+`
`)

	input := `{"type": "RECORD", "stream": "cats", "record": {"id": 1}}`
	err := Run(configPath, strings.NewReader(input), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before a corresponding schema")
}

func TestRunWithConfigEmitOff(t *testing.T) {
	outputDir := t.TempDir()
	configPath := writeConfigFile(t, `
checkpoints:
  emit: false
output:
  type: jsonFile
  directory: `+outputDir+`
`)
	config, cerr := LoadConfigFile(configPath)
	require.NoError(t, cerr)

	input := strings.Join([]string{
		`{"type": "SCHEMA", "stream": "cats", "schema": {"properties": {"id": {"type": "integer"}}}}`,
		`{"type": "RECORD", "stream": "cats", "record": {"id": 1}}`,
		`{"type": "STATE", "value": {"bookmarks": {"cats": 1}}}`,
	}, "\n")

	checkpoints := &bytes.Buffer{}
	mfactory := promreg.NewMetricFactory("testo_", nil, nil)
	require.NoError(t, RunWithConfig(config, strings.NewReader(input), checkpoints, mfactory))
	assert.Equal(t, "", checkpoints.String())

	records := readFileText(t, filepath.Join(outputDir, "cats.ndjson"))
	assert.Contains(t, records, `"id":1`)
}
