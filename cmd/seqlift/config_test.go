package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigValue(t *testing.T) {
	assert.Equal(t, true, parseConfigValue("yes"))
	assert.Equal(t, false, parseConfigValue("off"))
	assert.Equal(t, 11, parseConfigValue("11"))
	assert.Equal(t, 0.9, parseConfigValue("0.9"))
	assert.Equal(t, -5.0, parseConfigValue("-5.0"))
	assert.Equal(t, "1,2,6,7", parseConfigValue("1,2,6,7"))
}

func TestIsKnownKey(t *testing.T) {
	assert.True(t, isKnownKey("match.min_identity"))
	assert.True(t, isKnownKey("transfer.scoring.end_gap"))
	assert.False(t, isKnownKey("match.minimum_identity"))
}

func TestConfigSetGet(t *testing.T) {
	home := isolate(t)

	require.Equal(t, ExitSuccess, run([]string{"config", "set", "--", "transfer.scoring.end_gap", "-2"}))
	assert.FileExists(t, filepath.Join(home, ".seqlift.yaml"))
	assert.Equal(t, ExitUsage, run([]string{"config", "set", "no.such.key", "1"}))
	assert.Equal(t, ExitError, run([]string{"config", "get", "no.such.key"}))

	assert.Equal(t, ExitSuccess, run([]string{"config", "get", "transfer.scoring.end_gap"}))
	assert.Equal(t, ExitSuccess, run([]string{"config"}))
}
