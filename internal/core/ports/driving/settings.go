package driving

import "github.com/refeel-health/refeel-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetValue parses and stores a single key such as "store.backend".
	SetValue(key, value string) error

	// Keys lists the recognised configuration keys.
	Keys() []string

	// Validate checks the settings needed by the selected store backend.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ConfigPath returns where settings are stored.
	ConfigPath() string
}
