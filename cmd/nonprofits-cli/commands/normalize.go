package commands

import (
	"log/slog"
	"time"

	"nonprofits-backend/lib/configutil"
	"nonprofits-backend/lib/geocode"
	"nonprofits-backend/lib/normalize"
	"nonprofits-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	normalizeIn    *string
	normalizeOut   *string
	normalizeCache *string
)

func init() {
	normalizeIn = normalizeCmd.Flags().String("in", "scraped_nonprofits.csv", "The raw csv to normalize.")
	normalizeOut = normalizeCmd.Flags().String("out", "nonprofits.csv", "The clean csv to write.")
	normalizeCache = normalizeCmd.Flags().String("cache", "geocode_cache.json", "The geocode cache file.")
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [--in <raw.csv>] [--out <clean.csv>] [--cache <cache.json>]",
	Short: "Enriches raw scraped rows (needs tag, rating, geocoding) into the clean csv.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		geo := geocode.NewClient(geocode.ClientOptions{
			BaseUrl:    cfg.Geocode.BaseUrl,
			UserAgent:  cfg.Geocode.UserAgent,
			RegionHint: cfg.Geocode.RegionHint,
			MissDelay:  1100 * time.Millisecond,
			Cache:      geocode.LoadFileCache(*normalizeCache),
		})

		t1 := time.Now()
		n, err := normalize.RunFile(cmd.Context(), *normalizeIn, *normalizeOut, geo)
		if err != nil {
			serviceutil.Fatal("normalize failed", err)
		}
		t2 := time.Now()

		slog.Info("normalize finished", "rows", n, "seconds", t2.Sub(t1).Seconds())
	},
}
