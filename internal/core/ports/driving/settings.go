package driving

import "github.com/custodia-labs/wikiprox/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (domain.Settings, error)

	// Set updates a single dotted configuration key and persists it.
	Set(key string, value any) error

	// Keys lists the configuration keys the application reads.
	Keys() []string

	// Unknown lists stored keys the application does not read.
	Unknown() []string

	// Path returns where settings are persisted.
	Path() string
}
