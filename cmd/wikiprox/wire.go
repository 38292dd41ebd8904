package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/wikiprox/internal/adapters/driven/catalog"
	"github.com/custodia-labs/wikiprox/internal/adapters/driven/config/file"
	"github.com/custodia-labs/wikiprox/internal/adapters/driven/index/meili"
	"github.com/custodia-labs/wikiprox/internal/adapters/driven/mediawiki"
	"github.com/custodia-labs/wikiprox/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/wikiprox/internal/adapters/driving/cli"
	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
	"github.com/custodia-labs/wikiprox/internal/core/services"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

// connectTimeout bounds the index connection made at startup.
const connectTimeout = 10 * time.Second

// app owns the configuration store and watcher, which live for the whole
// process. Everything else is rebuilt by bootstrap.
type app struct {
	store   *file.ConfigStore
	watcher *file.Watcher
}

// bootstrap builds the services for one command, or rebuilds them after a
// configuration change. Incomplete or unusable configuration leaves only the
// settings service in place, with SetupErr saying why.
func (a *app) bootstrap(configDir string) (*cli.Services, error) {
	if a.store == nil {
		store, err := file.NewConfigStore(configDir)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		a.store = store
		if w, err := file.NewWatcher(store); err != nil {
			logger.Warn("config changes will not be picked up: %v", err)
		} else {
			a.watcher = w
		}
	} else if err := a.store.Load(); err != nil {
		return nil, fmt.Errorf("reload config: %w", err)
	}

	settingsService := services.NewSettingsService(a.store)
	s := &cli.Services{SettingsService: settingsService}
	if a.watcher != nil {
		s.Watcher = a.watcher
	}

	settings, err := settingsService.Get()
	if err != nil {
		s.SetupErr = err
		return s, nil
	}
	if err := settings.Validate(); err != nil {
		s.SetupErr = err
		return s, nil
	}

	rt, err := newRuntime(settings)
	if err != nil {
		s.SetupErr = err
		return s, nil
	}

	publisher := services.NewPageService(rt.origin, rt.catalog, settings.Publish)
	inventory := services.NewOriginInventory(rt.origin, settings.Publish)
	runs := rt.store.RunStore()
	syncOrch := services.NewSyncOrchestrator(inventory, rt.index, publisher, runs, settings.Sync)

	s.Publisher = publisher
	s.SyncOrchestrator = syncOrch
	s.Scheduler = services.NewScheduler(settingsService.GetSchedulerConfig(), rt.store.SchedulerStore(), runs, syncOrch)
	s.Close = rt.Close
	return s, nil
}

// Close stops the config watcher.
func (a *app) Close() error {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Close()
}

// runtime holds the adapters built from one version of the settings.
type runtime struct {
	origin  *mediawiki.Client
	catalog *catalog.Client
	store   *sqlite.Store
	index   driven.SearchIndex
}

func newRuntime(settings domain.Settings) (*runtime, error) {
	store, err := sqlite.NewStore(settings.Index.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	rt := &runtime{
		origin: mediawiki.NewClient(mediawiki.Config{
			APIURL:            settings.Origin.APIURL,
			Username:          settings.Origin.Username,
			Password:          settings.Origin.Password,
			Timeout:           settings.Origin.Timeout,
			RequestsPerSecond: settings.Origin.RequestsPerSecond,
			PublishedCategory: settings.Publish.PublishedCategory,
		}),
		catalog: catalog.NewClient(catalog.Config{
			APIURL:            settings.Catalog.APIURL,
			Timeout:           settings.Catalog.Timeout,
			RequestsPerSecond: settings.Catalog.RequestsPerSecond,
			RTMPStreamer:      settings.Catalog.RTMPStreamer,
		}),
		store: store,
	}

	switch settings.Index.Backend {
	case domain.IndexBackendMeilisearch:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		index, err := meili.New(ctx, meili.Config{
			Host:   settings.Index.Host,
			APIKey: settings.Index.APIKey,
			Name:   settings.Index.Name,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect to meilisearch: %w", err)
		}
		rt.index = index
	default:
		rt.index = store.SearchIndex()
	}

	logger.Debug("using %s index", settings.Index.Backend.Description())
	return rt, nil
}

// Close releases the index and the store.
func (r *runtime) Close() error {
	return errors.Join(r.index.Close(), r.store.Close())
}
