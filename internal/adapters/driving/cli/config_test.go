package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

func TestConfigShow_Defaults(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend: SQLite (local file)")
	assert.Contains(t, out, "Drag threshold: 5.0 px")
	assert.Contains(t, out, "Tap max: 300ms")
	assert.Contains(t, out, "Dir: (built-in)")
	assert.NotContains(t, out, "Warning")
}

func TestConfigShow_ValidationWarning(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "config", "set", "store.backend", "http")
	require.NoError(t, err)

	out, err := executeCommand(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend: HTTP (remote document store)")
	assert.Contains(t, out, "Warning:")
}

func TestConfigSet(t *testing.T) {
	ts := setupTestServices(t)

	out, err := executeCommand(t, "config", "set", "picker.select_radius", "0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Set picker.select_radius = 0.5")

	s, err := ts.settings.Get()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, s.Picker.SelectRadius, 1e-9)
}

func TestConfigSet_Invalid(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "config", "set", "picker.select_radius", "wide")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = executeCommand(t, "config", "set", "no.such.key", "1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigKeys(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "config", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "store.backend")
	assert.Contains(t, out, "picker.tap_max_ms")
}

func TestConfigPath_InMemory(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "(in memory)")
}

func TestConfig_NotConfigured(t *testing.T) {
	SetServices(Services{})

	for _, args := range [][]string{{"config", "show"}, {"config", "keys"}, {"config", "path"}} {
		_, err := executeCommand(t, args...)
		assert.Error(t, err, args)
	}
}
