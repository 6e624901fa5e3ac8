package main

import (
	"log/slog"
	"os"

	"nonprofits-backend/cmd/nonprofits-cli/commands"
	"nonprofits-backend/lib/serviceutil"
	"nonprofits-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(true)
	_, err := telemetry.SetupFromEnv(ctx, "nonprofits-cli")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("setup telemetry", err)
	}
	if os.IsNotExist(err) {
		slog.Debug("no telemetry.json5 found, telemetry disabled")
	}

	commands.ExecuteContext(ctx)
}
