package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikiprox/internal/logger"
)

func TestRoot_BootstrapReceivesConfigDir(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	settings := newMockSettingsService()
	var gotDir string
	SetBootstrap(func(dir string) (*Services, error) {
		gotDir = dir
		return &Services{SettingsService: settings}, nil
	})

	_, err := execute("--config", "/etc/wikiprox", "settings", "keys")

	require.NoError(t, err)
	assert.Equal(t, "/etc/wikiprox", gotDir)
}

func TestRoot_BootstrapError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetBootstrap(func(string) (*Services, error) {
		return nil, errors.New("open database: disk full")
	})

	_, err := execute("history")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialise")
	assert.Contains(t, err.Error(), "disk full")
}

func TestRoot_VersionSkipsBootstrap(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	called := false
	SetBootstrap(func(string) (*Services, error) {
		called = true
		return &Services{}, nil
	})

	_, err := execute("version")

	require.NoError(t, err)
	assert.False(t, called)
}

func TestRoot_VerboseFlag(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer logger.SetVerbose(false)

	_, err := execute("--verbose", "settings", "keys")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestExecute_ClosesServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	closed := 0
	SetBootstrap(func(string) (*Services, error) {
		return &Services{
			SettingsService: newMockSettingsService(),
			Close: func() error {
				closed++
				return nil
			},
		}, nil
	})
	rootCmd.SetArgs([]string{"settings", "keys"})

	require.NoError(t, Execute(context.Background()))
	assert.Equal(t, 1, closed)

	// A second shutdown is a no-op.
	require.NoError(t, shutdown())
	assert.Equal(t, 1, closed)
}

func TestNotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	assert.EqualError(t, notConfigured("publisher"), "publisher not configured")

	SetServices(&Services{SetupErr: errors.New("catalog.api_url is required")})
	assert.EqualError(t, notConfigured("publisher"),
		"publisher not configured: catalog.api_url is required")
}
