package commands

import (
	"nonprofits-backend/lib/configutil"
	"nonprofits-backend/lib/serviceutil"
	"nonprofits-backend/services/directory"
	"nonprofits-backend/services/directory/db"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the directory API, seeding the database from the clean csv on first run.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		database, err := cfg.Database.OpenDB(db.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		service := directory.NewService(database)
		err = service.SeedFromCsv(cmd.Context(), cfg.SeedCsv)
		if err != nil {
			serviceutil.Fatal("failed to seed db from csv", err)
		}

		serviceutil.StartHttpServer(serviceutil.ResolvePort(cfg.Port), service.Router())
	},
}
