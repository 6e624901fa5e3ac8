package cfl

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"nonprofits-backend/lib/htmlutil"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	profileHostPattern = regexp.MustCompile(`(?i)guidestar|candid`)
	orgPathPattern     = regexp.MustCompile(`(?i)/organization/`)
	genericPattern     = regexp.MustCompile(`(?i)nonprofit|charity|profile`)
	loadMorePattern    = regexp.MustCompile(`(?i)load more|more results|next`)
)

// candidateLinks scans the anchors of the page and all of its frames for
// urls that look like organization profiles. Fragment urls are excluded
// and the result is deduplicated in discovery order.
func candidateLinks(ctx context.Context, page *Page) []string {
	var links []string
	seen := map[string]bool{}

	collect := func(p *Page) {
		for _, anchor := range htmlutil.GetAnchors(ctx, p.Doc.Find("a")) {
			resolved, err := p.URL.Parse(anchor.Href)
			if err != nil {
				continue
			}
			href := resolved.String()
			if strings.Contains(href, "#") {
				continue
			}
			if !profileHostPattern.MatchString(href) &&
				!orgPathPattern.MatchString(href) &&
				!genericPattern.MatchString(href) {
				continue
			}
			if seen[href] {
				continue
			}
			seen[href] = true
			links = append(links, href)
		}
	}

	collect(page)
	for _, frame := range page.Frames {
		collect(frame)
	}
	return links
}

// nextPageLink finds a "load more"/"more results"/"next" style control on
// the page, returning its resolved href or "" when there is none.
func nextPageLink(ctx context.Context, page *Page) string {
	find := func(p *Page) string {
		for _, anchor := range htmlutil.GetAnchors(ctx, p.Doc.Find("a, button")) {
			if anchor.Href == "" {
				continue
			}
			if !loadMorePattern.MatchString(anchor.Name) {
				continue
			}
			resolved, err := p.URL.Parse(anchor.Href)
			if err != nil {
				continue
			}
			return resolved.String()
		}
		return ""
	}

	if href := find(page); href != "" {
		return href
	}
	for _, frame := range page.Frames {
		if href := find(frame); href != "" {
			return href
		}
	}
	return ""
}

// prioritize orders candidates (known profile hosts first, then
// /organization/ paths, then the rest) and truncates to max.
func prioritize(links []string, max int) []string {
	var hosts, orgs, rest []string
	for _, link := range links {
		switch {
		case profileHostPattern.MatchString(link):
			hosts = append(hosts, link)
		case orgPathPattern.MatchString(link):
			orgs = append(orgs, link)
		default:
			rest = append(rest, link)
		}
	}

	out := append(hosts, orgs...)
	out = append(out, rest...)
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// CollectCandidates loads the directory page and follows pagination
// controls a bounded number of times, stopping early as soon as a pass
// finds no control or discovers nothing new. The pool is capped at three
// times the profile limit.
func (c *Client) CollectCandidates(ctx context.Context, dirUrl string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "CollectCandidates")
	defer span.End()

	page, err := c.FetchPage(ctx, dirUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load directory page")
		return nil, err
	}

	poolCap := c.opts.MaxProfiles * 3
	seen := map[string]bool{}
	var candidates []string

	merge := func(links []string) int {
		added := 0
		for _, link := range links {
			if seen[link] || len(candidates) >= poolCap {
				continue
			}
			seen[link] = true
			candidates = append(candidates, link)
			added++
		}
		return added
	}

	merge(candidateLinks(ctx, page))

	for attempt := 0; attempt < c.opts.MaxPaginate; attempt++ {
		next := nextPageLink(ctx, page)
		if next == "" {
			break
		}

		page, err = c.FetchPage(ctx, next)
		if err != nil {
			slog.WarnContext(ctx, "pagination follow failed", "url", next, "err", err)
			break
		}
		added := merge(candidateLinks(ctx, page))
		slog.DebugContext(ctx, "followed pagination", "url", next, "new_candidates", added)
		if added == 0 {
			break
		}
	}

	span.SetAttributes(attribute.Int("candidates", len(candidates)))
	slog.InfoContext(ctx, "discovered candidate links", "count", len(candidates))
	return candidates, nil
}
