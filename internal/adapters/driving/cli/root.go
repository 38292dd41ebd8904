// Package cli provides the wikiprox command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikiprox/internal/core/ports/driving"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

// version is set at build time.
var version = "dev"

// ConfigWatcher reports changes to the configuration file.
type ConfigWatcher interface {
	Run(ctx context.Context, onChange func())
}

// Services holds everything the commands need.
type Services struct {
	SettingsService  driving.SettingsService
	Publisher        driving.Publisher
	SyncOrchestrator driving.SyncOrchestrator
	Scheduler        driving.Scheduler
	Watcher          ConfigWatcher

	// SetupErr explains why the publishing services are missing, typically
	// because the configuration is incomplete.
	SetupErr error

	// Close releases resources held by the services. May be nil.
	Close func() error
}

// Bootstrap builds services from the configuration in configDir.
// An empty configDir selects the default location.
type Bootstrap func(configDir string) (*Services, error)

var (
	settingsService  driving.SettingsService
	publisher        driving.Publisher
	syncOrchestrator driving.SyncOrchestrator
	scheduler        driving.Scheduler
	configWatcher    ConfigWatcher
	setupErr         error
	closeServices    func() error

	bootstrap Bootstrap
)

// Global flags.
var (
	verbose   bool
	configDir string
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "wikiprox",
	Short: "Publish an encyclopedia wiki to readers and a search index",
	Long: `wikiprox renders pages from a MediaWiki origin for public readers,
attaching primary-source metadata from the media catalog, and keeps a
search index in step with the wiki.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.wikiprox)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function used to build services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly, bypassing bootstrap.
func SetServices(s *Services) {
	settingsService = s.SettingsService
	publisher = s.Publisher
	syncOrchestrator = s.SyncOrchestrator
	scheduler = s.Scheduler
	configWatcher = s.Watcher
	setupErr = s.SetupErr
	closeServices = s.Close
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := shutdown(); closeErr != nil {
		logger.Warn("failed to close services: %v", closeErr)
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}
	s, err := bootstrap(configDir)
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	SetServices(s)
	return nil
}

func shutdown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// notConfigured reports a missing service, with the setup failure if known.
func notConfigured(name string) error {
	if setupErr != nil {
		return fmt.Errorf("%s not configured: %w", name, setupErr)
	}
	return errors.New(name + " not configured")
}
