package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRespectsLevelEnv(t *testing.T) {
	t.Setenv(LevelEnv, "warn")
	var buf bytes.Buffer
	log := New(&buf)
	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestNewFallsBackToInfo(t *testing.T) {
	t.Setenv(LevelEnv, "loud")
	var buf bytes.Buffer
	log := New(&buf)
	log.Info().Msg("info line")
	assert.True(t, strings.Contains(buf.String(), "info line"))
}

func TestOpenFileAppends(t *testing.T) {
	t.Setenv(LevelEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "fasttype.log")
	log, closer, err := OpenFile(path)
	require.NoError(t, err)
	log.Info().Msg("first")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
}
