package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikiprox/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("origin.api_url", "http://wiki.local/api.php")
	_ = store.Set("origin.timeout", "30s")
	_ = store.Set("origin.requests_per_second", 2.5)
	_ = store.Set("catalog.requests_per_second", int64(3))
	_ = store.Set("index.backend", "meilisearch")
	_ = store.Set("index.host", "http://meili:7700")
	_ = store.Set("sync.workers", int64(8))
	_ = store.Set("sync.interval", "15m")
	_ = store.Set("publish.show_unpublished", true)
	_ = store.Set("publish.non_article_titles", []any{"about", "contact"})

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, "http://wiki.local/api.php", settings.Origin.APIURL)
	assert.Equal(t, 30*time.Second, settings.Origin.Timeout)
	assert.InDelta(t, 2.5, settings.Origin.RequestsPerSecond, 0.001)
	assert.InDelta(t, 3.0, settings.Catalog.RequestsPerSecond, 0.001)
	assert.Equal(t, domain.IndexBackendMeilisearch, settings.Index.Backend)
	assert.Equal(t, "http://meili:7700", settings.Index.Host)
	assert.Equal(t, 8, settings.Sync.Workers)
	assert.Equal(t, 15*time.Minute, settings.Sync.Interval)
	assert.True(t, settings.Publish.ShowUnpublished)
	assert.Equal(t, []string{"about", "contact"}, settings.Publish.NonArticleTitles)
}

func TestSettingsService_Get_MalformedValuesFallBack(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("sync.title_timeout", "soon")
	_ = store.Set("index.backend", "elasticsearch")
	_ = store.Set("origin.requests_per_second", "fast")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Sync.TitleTimeout, settings.Sync.TitleTimeout)
	assert.Equal(t, defaults.Index.Backend, settings.Index.Backend)
	assert.InDelta(t, defaults.Origin.RequestsPerSecond, settings.Origin.RequestsPerSecond, 0.001)
}

func TestSettingsService_Set_ConvertsStrings(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Set("sync.workers", "6"))
	require.NoError(t, service.Set("catalog.requests_per_second", "0.5"))
	require.NoError(t, service.Set("publish.show_unpublished", "true"))
	require.NoError(t, service.Set("sync.title_timeout", "2m"))
	require.NoError(t, service.Set("publish.status_markers", "published, draft,,"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 6, settings.Sync.Workers)
	assert.InDelta(t, 0.5, settings.Catalog.RequestsPerSecond, 0.001)
	assert.True(t, settings.Publish.ShowUnpublished)
	assert.Equal(t, 2*time.Minute, settings.Sync.TitleTimeout)
	assert.Equal(t, []string{"published", "draft"}, settings.Publish.StatusMarkers)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"bad int", "sync.workers", "many"},
		{"bad bool", "publish.show_unpublished", "perhaps"},
		{"bad duration", "sync.interval", "hourly"},
		{"bad backend", "index.backend", "elasticsearch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			err := NewSettingsService(store).Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			_, exists := store.Get(tt.key)
			assert.False(t, exists)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore()).Keys()

	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "origin.api_url")
	assert.Contains(t, keys, "sync.max_consecutive_failures")
	assert.Contains(t, keys, "scheduler.enabled")
}

func TestSettingsService_Path(t *testing.T) {
	assert.Equal(t, ":memory:", NewSettingsService(memory.NewConfigStore()).Path())
}

func TestSettingsService_GetSchedulerConfig(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	cfg := service.GetSchedulerConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, time.Hour, cfg.Interval)

	_ = store.Set("sync.interval", "10m")
	cfg = service.GetSchedulerConfig()
	assert.Equal(t, 10*time.Minute, cfg.Interval)

	_ = store.Set("scheduler.enabled", false)
	cfg = service.GetSchedulerConfig()
	assert.False(t, cfg.Enabled)
}

func TestSettingsService_Get_WrongTypesFallBack(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"publish.show_unpublished":   "yes",
		"publish.status_markers":     int64(3),
		"sync.workers":               "eight",
		"origin.api_url":             int64(1),
		"publish.non_article_titles": []any{"about", 7},
	})

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Publish.ShowUnpublished, settings.Publish.ShowUnpublished)
	assert.Equal(t, defaults.Publish.StatusMarkers, settings.Publish.StatusMarkers)
	assert.Equal(t, defaults.Sync.Workers, settings.Sync.Workers)
	assert.Empty(t, settings.Origin.APIURL)
	assert.Equal(t, []string{"about"}, settings.Publish.NonArticleTitles)
}

func TestSettingsService_Unknown(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"origin.api_url": "http://wiki.local/api.php",
		"sync.wokers":    int64(4),
		"legacy.mode":    true,
	})

	assert.Equal(t, []string{"legacy.mode", "sync.wokers"}, NewSettingsService(store).Unknown())
	assert.Empty(t, NewSettingsService(memory.NewConfigStore()).Unknown())
}
