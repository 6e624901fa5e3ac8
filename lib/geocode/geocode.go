// Package geocode resolves free-text addresses to coordinates through a
// Nominatim-compatible endpoint, with an on-disk cache and a polite delay
// between uncached lookups.
package geocode

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"nonprofits-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("nonprofits.lib.geocode")

const DefaultBaseUrl = "https://nominatim.openstreetmap.org"

// Result holds the coordinates for a query. Both fields are empty
// strings when the lookup failed or returned nothing.
type Result struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type ClientOptions struct {
	BaseUrl string
	// identifies this client to the geocoding service, required by
	// the Nominatim usage policy
	UserAgent string
	// appended to every query to bias results towards the region the
	// directory covers, e.g. ", Louisville KY"
	RegionHint string
	// how long to wait after an uncached lookup, cache hits do not wait
	MissDelay time.Duration
	Cache     Cache
}

type Client struct {
	http       *resty.Client
	cache      Cache
	regionHint string
	missDelay  time.Duration
}

func NewClient(opts ClientOptions) *Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "nonprofits.lib.geocode.http")

	return &Client{
		http:       client,
		cache:      opts.Cache,
		regionHint: opts.RegionHint,
		missDelay:  opts.MissDelay,
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Lookup resolves the query to coordinates, first through the cache and
// only then over the network. A blank query short-circuits to an empty
// Result without touching either. Lookup failures are cached as empty
// results; they never abort the caller's run.
func (c *Client) Lookup(ctx context.Context, query string) Result {
	ctx, span := tracer.Start(ctx, "Lookup")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	if query == "" {
		return Result{}
	}
	if cached, ok := c.cache.Get(query); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached
	}

	out := c.fetch(ctx, query)

	err := c.cache.Put(query, out)
	if err != nil {
		slog.WarnContext(ctx, "failed to persist geocode cache", "query", query, "err", err)
	}

	// be polite
	select {
	case <-time.After(c.missDelay):
	case <-ctx.Done():
	}

	return out
}

func (c *Client) fetch(ctx context.Context, query string) Result {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", query+c.regionHint).
		SetQueryParam("format", "json").
		SetQueryParam("limit", "1").
		Get("/search")
	if err != nil {
		slog.WarnContext(ctx, "geocode request failed", "query", query, "err", err)
		return Result{}
	}

	var places []nominatimPlace
	err = json.Unmarshal(res.Body(), &places)
	if err != nil {
		slog.WarnContext(ctx, "geocode response unparsable", "query", query, "err", err)
		return Result{}
	}
	if len(places) == 0 {
		return Result{}
	}
	return Result{Lat: places[0].Lat, Lng: places[0].Lon}
}
