package services

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStoreBackend   = "store.backend"
	keyStoreDataDir   = "store.data_dir"
	keyStoreRedisAddr = "store.redis_addr"
	keyStoreBaseURL   = "store.http_base_url"
	keyStoreToken     = "store.http_token"
	keyStoreRate      = "store.http_rate"
	keyDragThreshold  = "picker.drag_threshold_px"
	keyTapMaxMs       = "picker.tap_max_ms"
	keySelectRadius   = "picker.select_radius"
	keyModelsDir      = "models.dir"
	keyLogLevel       = "log.level"
	keyLogFormat      = "log.format"
)

var settingKeys = []string{
	keyStoreBackend, keyStoreDataDir, keyStoreRedisAddr, keyStoreBaseURL,
	keyStoreToken, keyStoreRate, keyDragThreshold, keyTapMaxMs,
	keySelectRadius, keyModelsDir, keyLogLevel, keyLogFormat,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	if s.configStore == nil {
		return nil, domain.ErrNotImplemented
	}
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Store: domain.StoreSettings{
			Backend:           s.getBackend(defaults.Store.Backend),
			DataDir:           s.configStore.GetString(keyStoreDataDir),
			RedisAddr:         s.getString(keyStoreRedisAddr, defaults.Store.RedisAddr),
			BaseURL:           s.configStore.GetString(keyStoreBaseURL),
			Token:             s.configStore.GetString(keyStoreToken),
			RequestsPerSecond: s.getFloat(keyStoreRate, defaults.Store.RequestsPerSecond),
		},
		Picker: domain.PickerSettings{
			DragThresholdPx: s.getFloat(keyDragThreshold, defaults.Picker.DragThresholdPx),
			TapMaxDuration:  s.getMillis(keyTapMaxMs, defaults.Picker.TapMaxDuration),
			SelectRadius:    s.getFloat(keySelectRadius, defaults.Picker.SelectRadius),
		},
		ModelsDir: s.configStore.GetString(keyModelsDir),
		Log: domain.LogSettings{
			Level:  s.getString(keyLogLevel, defaults.Log.Level),
			Format: s.getString(keyLogFormat, defaults.Log.Format),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	values := []struct {
		key   string
		value any
	}{
		{keyStoreBackend, settings.Store.Backend.String()},
		{keyStoreDataDir, settings.Store.DataDir},
		{keyStoreRedisAddr, settings.Store.RedisAddr},
		{keyStoreBaseURL, settings.Store.BaseURL},
		{keyStoreRate, settings.Store.RequestsPerSecond},
		{keyDragThreshold, settings.Picker.DragThresholdPx},
		{keyTapMaxMs, settings.Picker.TapMaxDuration.Milliseconds()},
		{keySelectRadius, settings.Picker.SelectRadius},
		{keyModelsDir, settings.ModelsDir},
		{keyLogLevel, settings.Log.Level},
		{keyLogFormat, settings.Log.Format},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	// Only overwrite the token when one is given.
	if settings.Store.Token != "" {
		if err := s.configStore.Set(keyStoreToken, settings.Store.Token); err != nil {
			return fmt.Errorf("save %s: %w", keyStoreToken, err)
		}
	}
	return nil
}

// SetValue parses a raw value for a known key and stores it.
func (s *SettingsService) SetValue(key, value string) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	if !slices.Contains(settingKeys, key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any = value
	switch key {
	case keyStoreBackend:
		if !domain.StoreBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, value)
		}
	case keyStoreRate, keyDragThreshold, keySelectRadius:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case keyTapMaxMs:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case keyLogLevel:
		if !slices.Contains([]string{"debug", "info", "warn", "error"}, value) {
			return fmt.Errorf("%w: log level must be debug, info, warn or error", domain.ErrInvalidInput)
		}
	case keyLogFormat:
		if value != "console" && value != "json" {
			return fmt.Errorf("%w: log format must be console or json", domain.ErrInvalidInput)
		}
	}
	return s.configStore.Set(key, parsed)
}

// Keys lists the recognised configuration keys.
func (s *SettingsService) Keys() []string {
	return slices.Clone(settingKeys)
}

// Validate checks the settings needed by the selected store backend.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	switch settings.Store.Backend {
	case domain.StoreBackendRedis:
		if settings.Store.RedisAddr == "" {
			return fmt.Errorf("%w: %s is required for the redis backend", domain.ErrValidation, keyStoreRedisAddr)
		}
	case domain.StoreBackendHTTP:
		if settings.Store.BaseURL == "" {
			return fmt.Errorf("%w: %s is required for the http backend", domain.ErrValidation, keyStoreBaseURL)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ConfigPath returns the configuration file path.
func (s *SettingsService) ConfigPath() string {
	if s.configStore == nil {
		return ""
	}
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	if ms := s.configStore.GetInt(key); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	b := domain.StoreBackend(s.configStore.GetString(keyStoreBackend))
	if b.IsValid() {
		return b
	}
	return defaultVal
}
