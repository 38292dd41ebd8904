package domain

import (
	"errors"
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// IndexBackend selects the search index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite keeps the index in a local SQLite database.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendMeilisearch pushes documents to a Meilisearch server.
	IndexBackendMeilisearch IndexBackend = "meilisearch"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendMeilisearch:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendSQLite:
		return "SQLite (local file)"
	case IndexBackendMeilisearch:
		return "Meilisearch (remote server)"
	default:
		return unknownDescription
	}
}

// OriginSettings configures the origin wiki API.
type OriginSettings struct {
	APIURL            string
	Username          string
	Password          string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// CatalogSettings configures the primary-source catalog API.
type CatalogSettings struct {
	APIURL            string
	Timeout           time.Duration
	RequestsPerSecond float64

	// RTMPStreamer is stripped from streaming URLs so they are relative
	// to the streamer.
	RTMPStreamer string
}

// IndexSettings configures the search index.
type IndexSettings struct {
	Backend IndexBackend
	Host    string
	APIKey  string
	Name    string
	DataDir string
}

// SyncSettings configures the sync engine.
type SyncSettings struct {
	// Workers bounds how many titles are processed concurrently.
	Workers int

	// TitleTimeout bounds fetch, transform and push for a single title.
	TitleTimeout time.Duration

	// MaxConsecutiveFailures is how many connectivity failures in a row
	// abort the run.
	MaxConsecutiveFailures int

	// Interval is how often the scheduler runs a sync.
	Interval time.Duration
}

// PublishSettings configures what is published and how pages are rewritten.
type PublishSettings struct {
	// ShowUnpublished publishes pages the origin does not flag as published.
	ShowUnpublished bool

	PublishedCategory string
	AuthorsCategory   string

	// NonArticleTitles are published pages that are neither articles nor authors.
	NonArticleTitles []string

	// StatusMarkers are classes of editorial banners to strip.
	StatusMarkers []string

	// LegacyPrefixes are origin path prefixes removed from links.
	// Longer prefixes must come first.
	LegacyPrefixes []string
}

// Settings is the full application configuration.
type Settings struct {
	Origin  OriginSettings
	Catalog CatalogSettings
	Index   IndexSettings
	Sync    SyncSettings
	Publish PublishSettings
}

// DefaultSettings returns sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Origin: OriginSettings{
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
		},
		Catalog: CatalogSettings{
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
		},
		Index: IndexSettings{
			Backend: IndexBackendSQLite,
			Name:    "encyc",
		},
		Sync: SyncSettings{
			Workers:                4,
			TitleTimeout:           60 * time.Second,
			MaxConsecutiveFailures: 5,
			Interval:               1 * time.Hour,
		},
		Publish: PublishSettings{
			PublishedCategory: "Published",
			AuthorsCategory:   "Authors",
			StatusMarkers:     []string{"published"},
			LegacyPrefixes:    []string{"/mediawiki/index.php", "/mediawiki"},
		},
	}
}

// Validate checks the settings for values the application cannot run with.
func (s Settings) Validate() error {
	var errs []error
	if s.Origin.APIURL == "" {
		errs = append(errs, errors.New("origin.api_url is required"))
	}
	if s.Catalog.APIURL == "" {
		errs = append(errs, errors.New("catalog.api_url is required"))
	}
	if !s.Index.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("index.backend %q is not supported", s.Index.Backend))
	}
	if s.Index.Backend == IndexBackendMeilisearch && s.Index.Host == "" {
		errs = append(errs, errors.New("index.host is required for meilisearch"))
	}
	if s.Sync.Workers < 1 {
		errs = append(errs, errors.New("sync.workers must be at least 1"))
	}
	if s.Origin.Timeout <= 0 || s.Catalog.Timeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}
