// Package cfl scrapes a nonprofit directory site (the Community Foundation
// of Louisville's "find a nonprofit" listing and the Candid/GuideStar
// profiles it embeds) into raw CSV rows.
package cfl

import (
	"context"
	"net/http/cookiejar"
	"net/url"
	"time"

	"nonprofits-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("nonprofits.lib.scrapers.cfl")

const (
	// crawl safety limit, the candidate pool is capped at 3x this
	DefaultMaxProfiles = 250
	// upper bound on "load more"/next pagination follows
	DefaultMaxPaginate = 8
)

type ClientOptions struct {
	// the directory page the crawl starts from
	BaseUrl string
	// maximum number of profile pages to visit, 0 means DefaultMaxProfiles
	MaxProfiles int
	// maximum pagination follows on the directory page, 0 means DefaultMaxPaginate
	MaxPaginate int
	// bounds for the randomized polite delay between profile visits,
	// zero values mean 600ms-1100ms
	MinDelay time.Duration
	MaxDelay time.Duration
}

type Client struct {
	baseUrl *url.URL
	http    *resty.Client
	opts    ClientOptions
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if opts.MaxProfiles == 0 {
		opts.MaxProfiles = DefaultMaxProfiles
	}
	if opts.MaxPaginate == 0 {
		opts.MaxPaginate = DefaultMaxPaginate
	}
	if opts.MinDelay == 0 {
		opts.MinDelay = 600 * time.Millisecond
	}
	if opts.MaxDelay == 0 {
		opts.MaxDelay = 1100 * time.Millisecond
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 60)

	telemetry.InstrumentResty(client, "nonprofits.lib.scrapers.cfl.http")

	return &Client{
		baseUrl: baseUrl,
		http:    client,
		opts:    opts,
	}, nil
}
