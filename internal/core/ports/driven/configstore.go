package driven

// ConfigStore holds flattened configuration values keyed like "origin.api_url".
//
// Values keep the types they were decoded with. A TOML file yields int64 for
// integers and []any for arrays; typed reads and defaults are the caller's job.
type ConfigStore interface {
	// Get returns the raw value under key and whether it is set.
	Get(key string) (any, bool)

	// Set stores and persists a value. If persisting fails the previous
	// value is kept and the error returned.
	Set(key string, value any) error

	// Keys returns every stored key, sorted.
	Keys() []string

	// Path names where the configuration lives.
	Path() string
}
