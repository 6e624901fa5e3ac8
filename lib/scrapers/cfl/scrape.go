package cfl

import (
	"context"
	"log/slog"
	"time"

	"nonprofits-backend/lib/records"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Scrape runs the whole crawl: discover candidate profile links on the
// directory page, visit each one with a polite delay in between, extract
// and validate its fields, then dedupe. Per-profile failures are logged
// and skipped, only a failure to load the directory itself is fatal.
func (c *Client) Scrape(ctx context.Context) ([]records.RawProfile, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	candidates, err := c.CollectCandidates(ctx, c.baseUrl.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "candidate discovery failed")
		return nil, err
	}
	prioritized := prioritize(candidates, c.opts.MaxProfiles)

	var kept []records.RawProfile
	skipped := 0
	for i, link := range prioritized {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.InfoContext(
			ctx, "visiting profile",
			"n", i+1, "total", len(prioritized), "url", link,
		)

		page, err := c.FetchPage(ctx, link)
		if err != nil {
			slog.WarnContext(ctx, "skipping profile", "url", link, "err", err)
			c.politeDelay(ctx)
			continue
		}

		row := ExtractProfile(ctx, page)
		if Retain(row) {
			kept = append(kept, row)
		} else {
			skipped++
			slog.InfoContext(ctx, "skipped (missing essentials)", "url", link)
		}
		c.politeDelay(ctx)
	}

	rows := Dedupe(kept)
	span.SetAttributes(
		attribute.Int("kept", len(rows)),
		attribute.Int("skipped", skipped),
	)
	slog.InfoContext(
		ctx, "scrape finished",
		"rows", len(rows),
		"duplicates", len(kept)-len(rows),
		"skipped", skipped,
	)
	return rows, nil
}

func (c *Client) politeDelay(ctx context.Context) {
	ms, err := random.IntRange(
		int(c.opts.MinDelay/time.Millisecond),
		int(c.opts.MaxDelay/time.Millisecond),
	)
	if err != nil {
		ms = int(c.opts.MinDelay / time.Millisecond)
	}
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
	case <-ctx.Done():
	}
}
