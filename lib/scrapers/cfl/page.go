package cfl

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Page is a loaded document together with the documents of the frames it
// embeds. Profile data on the directory is commonly hosted inside a
// third-party iframe, so extraction and link discovery walk Frames too.
type Page struct {
	URL    *url.URL
	Doc    *goquery.Document
	Frames []*Page
}

// FetchPage loads the document at link (resolved against the client's
// base url when relative) along with every iframe it embeds. A frame
// that fails to load is logged and dropped, it never fails the page.
func (c *Client) FetchPage(ctx context.Context, link string) (*Page, error) {
	ctx, span := tracer.Start(ctx, "FetchPage")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	page, err := c.fetchDocument(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch document")
		return nil, err
	}

	page.Doc.Find("iframe[src]").Each(func(_ int, sel *goquery.Selection) {
		src := sel.AttrOr("src", "")
		frameUrl, err := page.URL.Parse(src)
		if err != nil {
			slog.WarnContext(ctx, "unparsable iframe src", "src", src, "err", err)
			return
		}
		frame, err := c.fetchDocument(ctx, frameUrl.String())
		if err != nil {
			slog.WarnContext(ctx, "failed to load iframe", "src", frameUrl.String(), "err", err)
			return
		}
		page.Frames = append(page.Frames, frame)
	})

	return page, nil
}

func (c *Client) fetchDocument(ctx context.Context, link string) (*Page, error) {
	resolved, err := c.baseUrl.Parse(link)
	if err != nil {
		return nil, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(resolved.String())
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, err
	}

	// the request may have been redirected, keep the final url so
	// relative hrefs and the external-host check resolve correctly
	finalUrl := resolved
	if raw := res.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalUrl = raw.Request.URL
	}

	return &Page{URL: finalUrl, Doc: doc}, nil
}
