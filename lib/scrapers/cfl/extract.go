package cfl

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"nonprofits-backend/lib/htmlutil"
	"nonprofits-backend/lib/records"

	"github.com/PuerkitoBio/goquery"
)

var whitespace = regexp.MustCompile(`\s+`)

func clean(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

var (
	cityStatePattern      = regexp.MustCompile(`([^,]+),\s*([A-Z]{2})(?:\s*\d{5})?`)
	cityStateLoosePattern = regexp.MustCompile(`([A-Za-z.\- ]+),\s*([A-Z]{2})`)
)

// ParseCityState splits a free-text address on a "<city>, <ST> <zip?>"
// pattern. Both results are empty when the pattern does not match.
func ParseCityState(addr string) (city, state string) {
	if addr == "" {
		return "", ""
	}
	m := cityStatePattern.FindStringSubmatch(addr)
	if m == nil {
		m = cityStateLoosePattern.FindStringSubmatch(addr)
	}
	if m == nil {
		return "", ""
	}
	return clean(m[1]), clean(m[2])
}

// a fieldExtractor is one fallback strategy for one field, returning ""
// when it finds nothing. Strategies are tried in order, first non-empty
// value wins.
type fieldExtractor func(p *Page) string

func pickText(selector string) fieldExtractor {
	return func(p *Page) string {
		return strings.TrimSpace(p.Doc.Find(selector).First().Text())
	}
}

func firstValue(p *Page, extractors []fieldExtractor) string {
	for _, extract := range extractors {
		// profile content frequently lives in an embedded frame, try
		// the top document first and then each frame in order
		if v := extract(p); v != "" {
			return v
		}
		for _, frame := range p.Frames {
			if v := extract(frame); v != "" {
				return v
			}
		}
	}
	return ""
}

var nameExtractors = []fieldExtractor{
	pickText("h1"),
	pickText(".org-name, .organization-name, .profile__title, .page-title"),
	func(p *Page) string {
		return strings.TrimSpace(p.Doc.Find("title").First().Text())
	},
}

var missionExtractors = []fieldExtractor{
	pickText(".mission, .org-mission, .mission-statement, .profile__description, .profile-description, .summary"),
	pickText(`[data-testid="mission"]`),
	pickText(`[itemprop="description"]`),
}

var addressExtractors = []fieldExtractor{
	pickText("address"),
	pickText(`.address, .org-address, .location, [itemprop="address"]`),
}

var phoneExtractors = []fieldExtractor{
	pickText(`a[href^="tel:"]`),
	pickText(".phone, .org-phone"),
}

var socialHostPattern = regexp.MustCompile(`facebook|instagram|twitter|x\.com|youtube|linkedin`)

func stripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}

// externalWebsite picks the first http(s) link pointing off-site that is
// not a known social-media host, falling back to anything labelled
// "website".
func externalWebsite(ctx context.Context, p *Page) string {
	pageHost := stripWWW(p.URL.Hostname())
	for _, anchor := range htmlutil.GetAnchors(ctx, p.Doc.Find(`a[href^="http"]`)) {
		link, err := url.Parse(anchor.Href)
		if err != nil {
			continue
		}
		host := stripWWW(link.Hostname())
		if host == "" || host == pageHost {
			continue
		}
		if socialHostPattern.MatchString(host) {
			continue
		}
		return anchor.Href
	}

	var labelled string
	p.Doc.Find("a, button").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !websitePattern.MatchString(sel.Text()) {
			return true
		}
		labelled = sel.AttrOr("href", "")
		return labelled == ""
	})
	return labelled
}

var websitePattern = regexp.MustCompile(`(?i)website`)

var einPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bEIN[:\s]*([0-9\-]{2,15})\b`),
	regexp.MustCompile(`(?i)\bEmployer Identification Number[:\s]*([0-9\-]{2,15})\b`),
}

func extractEin(p *Page) string {
	bodies := []string{p.Doc.Text()}
	for _, frame := range p.Frames {
		bodies = append(bodies, frame.Doc.Text())
	}
	for _, body := range bodies {
		for _, pattern := range einPatterns {
			m := pattern.FindStringSubmatch(body)
			if m != nil {
				return m[1]
			}
		}
	}
	return ""
}

// ExtractProfile runs the selector fallback chains against a loaded
// profile page and assembles a raw record.
func ExtractProfile(ctx context.Context, p *Page) records.RawProfile {
	name := clean(firstValue(p, nameExtractors))
	mission := clean(firstValue(p, missionExtractors))
	address := clean(firstValue(p, addressExtractors))
	phone := clean(firstValue(p, phoneExtractors))

	website := externalWebsite(ctx, p)
	if website == "" {
		for _, frame := range p.Frames {
			website = externalWebsite(ctx, frame)
			if website != "" {
				break
			}
		}
	}
	website = clean(website)

	city, state := ParseCityState(address)

	return records.RawProfile{
		Name:       name,
		Ein:        clean(extractEin(p)),
		Mission:    mission,
		Address:    address,
		City:       city,
		State:      state,
		Website:    website,
		Phone:      phone,
		Notes:      "",
		ProfileUrl: p.URL.String(),
	}
}

// Retain reports whether an extracted record has the essentials: a name
// plus at least one of website or address.
func Retain(r records.RawProfile) bool {
	return r.Name != "" && (r.Website != "" || r.Address != "")
}

// Dedupe drops later duplicates, keyed by lower-cased website when
// present, otherwise "name|city" lower-cased. First occurrence wins.
func Dedupe(rows []records.RawProfile) []records.RawProfile {
	var out []records.RawProfile
	seen := map[string]bool{}
	for _, r := range rows {
		key := strings.ToLower(r.Website)
		if key == "" {
			key = strings.ToLower(r.Name) + "|" + strings.ToLower(r.City)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
