package commands

import (
	"log/slog"
	"os"

	"nonprofits-backend/lib/configutil"
	"nonprofits-backend/lib/records"
	"nonprofits-backend/lib/scrapers/cfl"
	"nonprofits-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var scrapeOut *string

func init() {
	scrapeOut = scrapeCmd.Flags().String("out", "scraped_nonprofits.csv", "The csv file to write raw scraped rows to.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--out <path/to/output.csv>]",
	Short: "Crawls the configured directory site and writes raw profile rows to csv.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		client, err := cfl.NewClient(cmd.Context(), cfl.ClientOptions{
			BaseUrl:     cfg.Scrape.BaseUrl,
			MaxProfiles: cfg.Scrape.MaxProfiles,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize scrape client", err)
		}

		rows, err := client.Scrape(cmd.Context())
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}

		err = records.WriteRawFile(*scrapeOut, rows)
		if err != nil {
			serviceutil.Fatal("failed to write output csv", err)
		}
		slog.Info("wrote raw rows", "path", *scrapeOut, "rows", len(rows))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "City", "State", "Website"})
		for _, r := range rows {
			t.AppendRow(table.Row{r.Name, r.City, r.State, r.Website})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
