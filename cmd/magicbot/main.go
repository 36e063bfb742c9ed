// Command magicbot runs the simulated robot and inspects state tables.
package main

import (
	"context"
	"log/slog"

	"github.com/amp-labs/magicbot/cli"
	"github.com/amp-labs/magicbot/logger"
	"github.com/amp-labs/magicbot/shutdown"
	"github.com/amp-labs/magicbot/telemetry"
)

func main() {
	ctx := shutdown.SetupHandler(context.Background())

	// Fatal exits without running deferred calls, so flush telemetry here too.
	shutdown.BeforeShutdown("telemetry", func(ctx context.Context) {
		if err := telemetry.Shutdown(ctx); err != nil {
			slog.Warn("Failed to shut down telemetry", "error", err)
		}
	})

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		logger.Fatal("magicbot exited with an error", "error", err)
	}
}
