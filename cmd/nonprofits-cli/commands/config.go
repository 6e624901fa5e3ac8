package commands

import (
	configsqlite "nonprofits-backend/lib/configutil/sqlite"
)

type ScrapeConfig struct {
	BaseUrl     string `json:"base_url"`
	MaxProfiles int    `json:"max_profiles"`
}

type GeocodeConfig struct {
	BaseUrl string `json:"base_url"`
	// sent with every lookup, the geocoding service requires a
	// client-identifying value here
	UserAgent  string `json:"user_agent"`
	RegionHint string `json:"region_hint"`
}

type Config struct {
	Scrape   ScrapeConfig       `json:"scrape"`
	Geocode  GeocodeConfig      `json:"geocode"`
	Database configsqlite.Struct `json:"database"`
	SeedCsv  string             `json:"seed_csv"`
	Port     int                `json:"port"`
}
