package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"-model", "model.json"}, &out)
	require.NoError(t, err)
	require.False(t, exit)
	require.NotNil(t, cfg)

	assert.Equal(t, "model.json", cfg.ModelPath)
	assert.Empty(t, cfg.VariationsPath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.WorkerCount)
	assert.False(t, cfg.ShowDiagram)
	assert.Equal(t, 5, cfg.TableRows)
}

func TestParseAllFlags(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{
		"-model", "models/",
		"-variations", "variations.yml",
		"-workers", "8",
		"-log-format", "json",
		"-log-level", "debug",
		"-diagram",
		"-table-rows", "10",
	}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "models/", cfg.ModelPath)
	assert.Equal(t, "variations.yml", cfg.VariationsPath)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.ShowDiagram)
	assert.Equal(t, 10, cfg.TableRows)
}

func TestParseModelPathSources(t *testing.T) {
	var out bytes.Buffer

	cfg, _, err := Parse([]string{"-m", "short.json"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "short.json", cfg.ModelPath)

	cfg, _, err = Parse([]string{"positional.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "positional.hcl", cfg.ModelPath)

	// -model wins over the positional argument
	cfg, _, err = Parse([]string{"-model", "flagged.json", "positional.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "flagged.json", cfg.ModelPath)
}

func TestParseNoModelPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseHelpExitsCleanly(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
}

func TestParseInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus", "model.json"}},
		{"bad log format", []string{"-log-format", "xml", "model.json"}},
		{"bad log level", []string{"-log-level", "loud", "model.json"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, exit, err := Parse(tc.args, &out)
			require.Error(t, err)
			assert.False(t, exit)
			assert.Nil(t, cfg)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
