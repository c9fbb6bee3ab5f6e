package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refeel-health/refeel-cli/internal/adapters/driven/storage/memory"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NotNil(t, service)
	assert.Equal(t, ":memory:", service.ConfigPath())
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Store.Backend, settings.Store.Backend)
	assert.Equal(t, defaults.Store.RedisAddr, settings.Store.RedisAddr)
	assert.InDelta(t, defaults.Picker.DragThresholdPx, settings.Picker.DragThresholdPx, 1e-9)
	assert.Equal(t, defaults.Picker.TapMaxDuration, settings.Picker.TapMaxDuration)
	assert.Equal(t, defaults.Log.Level, settings.Log.Level)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("store.backend", "redis")
	_ = store.Set("store.redis_addr", "cache:6380")
	_ = store.Set("picker.tap_max_ms", 450)
	_ = store.Set("picker.select_radius", 0.5)

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.StoreBackendRedis, settings.Store.Backend)
	assert.Equal(t, "cache:6380", settings.Store.RedisAddr)
	assert.Equal(t, 450*time.Millisecond, settings.Picker.TapMaxDuration)
	assert.InDelta(t, 0.5, settings.Picker.SelectRadius, 1e-9)
}

func TestSettingsService_Get_InvalidBackendFallsBack(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("store.backend", "floppy")

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings().Store.Backend, settings.Store.Backend)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.Store.Backend = domain.StoreBackendHTTP
	settings.Store.BaseURL = "https://api.example.org"
	settings.Store.Token = "secret"
	settings.ModelsDir = "/opt/models"
	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StoreBackendHTTP, got.Store.Backend)
	assert.Equal(t, "https://api.example.org", got.Store.BaseURL)
	assert.Equal(t, "secret", got.Store.Token)
	assert.Equal(t, "/opt/models", got.ModelsDir)

	// An empty token leaves the stored one alone.
	settings.Store.Token = ""
	require.NoError(t, service.Save(&settings))
	got, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Store.Token)
}

func TestSettingsService_SetValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"backend", "store.backend", "sqlite", false},
		{"unknown backend", "store.backend", "floppy", true},
		{"rate", "store.http_rate", "2.5", false},
		{"negative rate", "store.http_rate", "-1", true},
		{"tap", "picker.tap_max_ms", "250", false},
		{"zero tap", "picker.tap_max_ms", "0", true},
		{"level", "log.level", "debug", false},
		{"bad level", "log.level", "loud", true},
		{"format", "log.format", "json", false},
		{"bad format", "log.format", "xml", true},
		{"unknown key", "search.mode", "hybrid", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore())
			err := service.SetValue(tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsService_Validate(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	require.NoError(t, service.Validate())

	require.NoError(t, service.SetValue("store.backend", "http"))
	assert.ErrorIs(t, service.Validate(), domain.ErrValidation)

	require.NoError(t, service.SetValue("store.http_base_url", "http://localhost:8080"))
	assert.NoError(t, service.Validate())
}

func TestSettingsService_Keys(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	keys := service.Keys()
	assert.Contains(t, keys, "store.backend")
	assert.Contains(t, keys, "log.format")

	keys[0] = "mutated"
	assert.NotContains(t, service.Keys(), "mutated")
}

func TestSettingsService_NilStore(t *testing.T) {
	service := NewSettingsService(nil)
	_, err := service.Get()
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	assert.Empty(t, service.ConfigPath())
}
