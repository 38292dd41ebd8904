// Command wikiprox publishes a MediaWiki encyclopedia to readers and keeps
// a search index in step with it.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/wikiprox/internal/adapters/driving/cli"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	a := &app{}
	cli.SetVersion(version)
	cli.SetBootstrap(a.bootstrap)

	err := cli.Execute(context.Background())
	if closeErr := a.Close(); closeErr != nil {
		logger.Warn("failed to close: %v", closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
