package main

import (
	"log/slog"
	"os"

	"nonprofits-backend/lib/configutil"
	configsqlite "nonprofits-backend/lib/configutil/sqlite"
	"nonprofits-backend/lib/serviceutil"
	"nonprofits-backend/lib/telemetry"
	"nonprofits-backend/services/directory"
	"nonprofits-backend/services/directory/db"
)

type Config struct {
	Database configsqlite.Struct `json:"database"`
	// the clean csv the orgs table is seeded from when empty
	SeedCsv string `json:"seed_csv"`
	Port    int    `json:"port"`
}

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(false)
	_, err := telemetry.SetupFromEnv(ctx, "directoryd")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("setup telemetry", err)
	}
	if os.IsNotExist(err) {
		slog.Info("no telemetry.json5 found, telemetry disabled")
	}

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	database, err := config.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	defer database.Close()

	service := directory.NewService(database)
	err = service.SeedFromCsv(ctx, config.SeedCsv)
	if err != nil {
		serviceutil.Fatal("failed to seed db from csv", err)
	}

	serviceutil.StartHttpServer(serviceutil.ResolvePort(config.Port), service.Router())
}
