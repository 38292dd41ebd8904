package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the origin wiki, the media catalog, the search index
and sync behaviour.

Use subcommands to change single values or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting. Lists are given comma separated and durations
as Go durations such as 30s or 1h. Run 'wikiprox settings keys' for the
list of keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the origin, catalog and index.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("File: %s\n", settingsService.Path())
	cmd.Println()

	cmd.Println("[Origin]")
	cmd.Printf("  API URL: %s\n", valueOrUnset(settings.Origin.APIURL))
	if settings.Origin.Username != "" {
		cmd.Printf("  Username: %s\n", settings.Origin.Username)
		cmd.Printf("  Password: %s\n", maskSecret(settings.Origin.Password))
	}
	cmd.Printf("  Timeout: %s\n", settings.Origin.Timeout)
	cmd.Printf("  Requests/s: %g\n", settings.Origin.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Catalog]")
	cmd.Printf("  API URL: %s\n", valueOrUnset(settings.Catalog.APIURL))
	cmd.Printf("  Timeout: %s\n", settings.Catalog.Timeout)
	cmd.Printf("  Requests/s: %g\n", settings.Catalog.RequestsPerSecond)
	if settings.Catalog.RTMPStreamer != "" {
		cmd.Printf("  RTMP streamer: %s\n", settings.Catalog.RTMPStreamer)
	}
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend.Description())
	cmd.Printf("  Name: %s\n", settings.Index.Name)
	if settings.Index.Backend == domain.IndexBackendMeilisearch {
		cmd.Printf("  Host: %s\n", valueOrUnset(settings.Index.Host))
		if settings.Index.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskSecret(settings.Index.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	} else if settings.Index.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.Index.DataDir)
	}
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Workers: %d\n", settings.Sync.Workers)
	cmd.Printf("  Title timeout: %s\n", settings.Sync.TitleTimeout)
	cmd.Printf("  Abort after: %d connectivity failures\n", settings.Sync.MaxConsecutiveFailures)
	cmd.Printf("  Interval: %s\n", settings.Sync.Interval)
	cmd.Println()

	cmd.Println("[Publish]")
	cmd.Printf("  Published category: %s\n", settings.Publish.PublishedCategory)
	cmd.Printf("  Authors category: %s\n", settings.Publish.AuthorsCategory)
	cmd.Printf("  Show unpublished: %t\n", settings.Publish.ShowUnpublished)
	if len(settings.Publish.NonArticleTitles) > 0 {
		cmd.Printf("  Non-article titles: %s\n", strings.Join(settings.Publish.NonArticleTitles, ", "))
	}
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'wikiprox settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	if unknown := settingsService.Unknown(); len(unknown) > 0 {
		cmd.Printf("Ignored unknown keys: %s\n", strings.Join(unknown, ", "))
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	current, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("wikiprox Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)

	// Step 1: Origin wiki
	cmd.Println("Step 1: Origin Wiki")
	cmd.Println("-------------------")
	if err := prompt(cmd, reader, "origin.api_url", "MediaWiki API URL", current.Origin.APIURL); err != nil {
		return err
	}
	if err := prompt(cmd, reader, "origin.username", "Username (blank for none)", current.Origin.Username); err != nil {
		return err
	}
	cmd.Print("Password (blank to keep): ")
	if password := readPassword(in, reader); password != "" {
		if err := settingsService.Set("origin.password", password); err != nil {
			return fmt.Errorf("failed to set password: %w", err)
		}
	}
	cmd.Println()
	cmd.Println()

	// Step 2: Catalog
	cmd.Println("Step 2: Media Catalog")
	cmd.Println("---------------------")
	if err := prompt(cmd, reader, "catalog.api_url", "Catalog API URL", current.Catalog.APIURL); err != nil {
		return err
	}
	cmd.Println()

	// Step 3: Search index
	cmd.Println("Step 3: Search Index")
	cmd.Println("--------------------")
	backends := []domain.IndexBackend{domain.IndexBackendSQLite, domain.IndexBackendMeilisearch}
	defaultChoice := 1
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
		if b == current.Index.Backend {
			defaultChoice = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", defaultChoice)
	backend := backends[parseChoice(readLine(reader), len(backends), defaultChoice)-1]
	if err := settingsService.Set("index.backend", backend.String()); err != nil {
		return fmt.Errorf("failed to set index backend: %w", err)
	}
	if backend == domain.IndexBackendMeilisearch {
		if err := prompt(cmd, reader, "index.host", "Meilisearch host", current.Index.Host); err != nil {
			return err
		}
		cmd.Print("Meilisearch API key (blank to keep): ")
		if key := readPassword(in, reader); key != "" {
			if err := settingsService.Set("index.api_key", key); err != nil {
				return fmt.Errorf("failed to set API key: %w", err)
			}
		}
		cmd.Println()
	}
	cmd.Println()

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	updated, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := updated.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

// prompt asks for a value, keeping the current one on blank input.
func prompt(cmd *cobra.Command, reader *bufio.Reader, key, label, current string) error {
	if current != "" {
		cmd.Printf("%s [%s]: ", label, current)
	} else {
		cmd.Printf("%s: ", label)
	}
	value := readLine(reader)
	if value == "" {
		return nil
	}
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Helper functions.

func valueOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
