package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyOriginAPIURL      = "origin.api_url"
	keyOriginUsername    = "origin.username"
	keyOriginPassword    = "origin.password"
	keyOriginTimeout     = "origin.timeout"
	keyOriginRate        = "origin.requests_per_second"
	keyCatalogAPIURL     = "catalog.api_url"
	keyCatalogTimeout    = "catalog.timeout"
	keyCatalogRate       = "catalog.requests_per_second"
	keyCatalogRTMP       = "catalog.rtmp_streamer"
	keyIndexBackend      = "index.backend"
	keyIndexHost         = "index.host"
	keyIndexAPIKey       = "index.api_key"
	keyIndexName         = "index.name"
	keyIndexDataDir      = "index.data_dir"
	keySyncWorkers       = "sync.workers"
	keySyncTitleTimeout  = "sync.title_timeout"
	keySyncMaxFailures   = "sync.max_consecutive_failures"
	keySyncInterval      = "sync.interval"
	keyShowUnpublished   = "publish.show_unpublished"
	keyPublishedCategory = "publish.published_category"
	keyAuthorsCategory   = "publish.authors_category"
	keyNonArticleTitles  = "publish.non_article_titles"
	keyStatusMarkers     = "publish.status_markers"
	keyLegacyPrefixes    = "publish.legacy_prefixes"
	keySchedulerEnabled  = "scheduler.enabled"
)

// keyKind describes how a value given on the command line is stored.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
)

var settingKeys = map[string]keyKind{
	keyOriginAPIURL:      kindString,
	keyOriginUsername:    kindString,
	keyOriginPassword:    kindString,
	keyOriginTimeout:     kindDuration,
	keyOriginRate:        kindFloat,
	keyCatalogAPIURL:     kindString,
	keyCatalogTimeout:    kindDuration,
	keyCatalogRate:       kindFloat,
	keyCatalogRTMP:       kindString,
	keyIndexBackend:      kindString,
	keyIndexHost:         kindString,
	keyIndexAPIKey:       kindString,
	keyIndexName:         kindString,
	keyIndexDataDir:      kindString,
	keySyncWorkers:       kindInt,
	keySyncTitleTimeout:  kindDuration,
	keySyncMaxFailures:   kindInt,
	keySyncInterval:      kindDuration,
	keyShowUnpublished:   kindBool,
	keyPublishedCategory: kindString,
	keyAuthorsCategory:   kindString,
	keyNonArticleTitles:  kindList,
	keyStatusMarkers:     kindList,
	keyLegacyPrefixes:    kindList,
	keySchedulerEnabled:  kindBool,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
// Missing or malformed values fall back to defaults.
func (s *SettingsService) Get() (domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := domain.Settings{
		Origin: domain.OriginSettings{
			APIURL:            s.lookupString(keyOriginAPIURL),
			Username:          s.lookupString(keyOriginUsername),
			Password:          s.lookupString(keyOriginPassword),
			Timeout:           s.getDuration(keyOriginTimeout, d.Origin.Timeout),
			RequestsPerSecond: s.getFloat(keyOriginRate, d.Origin.RequestsPerSecond),
		},
		Catalog: domain.CatalogSettings{
			APIURL:            s.lookupString(keyCatalogAPIURL),
			Timeout:           s.getDuration(keyCatalogTimeout, d.Catalog.Timeout),
			RequestsPerSecond: s.getFloat(keyCatalogRate, d.Catalog.RequestsPerSecond),
			RTMPStreamer:      s.lookupString(keyCatalogRTMP),
		},
		Index: domain.IndexSettings{
			Backend: s.getBackend(d.Index.Backend),
			Host:    s.lookupString(keyIndexHost),
			APIKey:  s.lookupString(keyIndexAPIKey),
			Name:    s.getString(keyIndexName, d.Index.Name),
			DataDir: s.lookupString(keyIndexDataDir),
		},
		Sync: domain.SyncSettings{
			Workers:                s.getInt(keySyncWorkers, d.Sync.Workers),
			TitleTimeout:           s.getDuration(keySyncTitleTimeout, d.Sync.TitleTimeout),
			MaxConsecutiveFailures: s.getInt(keySyncMaxFailures, d.Sync.MaxConsecutiveFailures),
			Interval:               s.getDuration(keySyncInterval, d.Sync.Interval),
		},
		Publish: domain.PublishSettings{
			ShowUnpublished:   s.getBool(keyShowUnpublished, d.Publish.ShowUnpublished),
			PublishedCategory: s.getString(keyPublishedCategory, d.Publish.PublishedCategory),
			AuthorsCategory:   s.getString(keyAuthorsCategory, d.Publish.AuthorsCategory),
			NonArticleTitles:  s.getStringSlice(keyNonArticleTitles, d.Publish.NonArticleTitles),
			StatusMarkers:     s.getStringSlice(keyStatusMarkers, d.Publish.StatusMarkers),
			LegacyPrefixes:    s.getStringSlice(keyLegacyPrefixes, d.Publish.LegacyPrefixes),
		},
	}

	return settings, nil
}

// GetSchedulerConfig returns the scheduler configuration derived from the
// sync interval. scheduler.enabled = false turns the scheduler off.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	settings, _ := s.Get()
	cfg := domain.SchedulerConfigFor(settings.Sync.Interval)
	cfg.Enabled = cfg.Enabled && s.getBool(keySchedulerEnabled, true)
	return cfg
}

// Set validates and stores one configuration value.
// String values are converted to the key's type.
func (s *SettingsService) Set(key string, value any) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}

	converted, err := convertValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if key == keyIndexBackend && !domain.IndexBackend(converted.(string)).IsValid() {
		return fmt.Errorf("%w: index backend %q is not supported", domain.ErrInvalidInput, converted)
	}

	if err := s.configStore.Set(key, converted); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the configuration keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unknown lists stored keys that no setting reads, such as misspelt ones.
func (s *SettingsService) Unknown() []string {
	var unknown []string
	for _, k := range s.configStore.Keys() {
		if _, ok := settingKeys[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	return unknown
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// convertValue turns CLI strings into stored values. Non-string values are
// stored as given.
func convertValue(kind keyKind, value any) (any, error) {
	str, isString := value.(string)
	if !isString {
		return value, nil
	}

	switch kind {
	case kindInt:
		return strconv.ParseInt(str, 10, 64)
	case kindFloat:
		return strconv.ParseFloat(str, 64)
	case kindBool:
		return strconv.ParseBool(str)
	case kindDuration:
		if _, err := time.ParseDuration(str); err != nil {
			return nil, err
		}
		return str, nil
	case kindList:
		var items []string
		for _, item := range strings.Split(str, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		return str, nil
	}
}

// Helper methods for reading config with defaults. Values of the wrong type
// read as unset.

func (s *SettingsService) lookupString(key string) string {
	val, _ := s.configStore.Get(key)
	str, _ := val.(string)
	return str
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.lookupString(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt accepts int64 from TOML as well as int and whole floats.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	val, _ := s.configStore.Get(key)
	var n int
	switch v := val.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		n = int(v)
	}
	if n == 0 {
		return defaultVal
	}
	return n
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	val, _ := s.configStore.Get(key)
	b, ok := val.(bool)
	if !ok {
		return defaultVal
	}
	return b
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, _ := s.configStore.Get(key)
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return defaultVal
	}
}

// getDuration reads a duration string like "30s" or "1h".
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s.lookupString(key))
	if err != nil {
		return defaultVal
	}
	return d
}

// getStringSlice accepts []string as well as the []any TOML arrays decode to.
// Non-string items are dropped.
func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				items = append(items, str)
			}
		}
		return items
	default:
		return defaultVal
	}
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	val := s.lookupString(keyIndexBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.IndexBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
