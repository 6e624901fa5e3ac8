package cfl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nonprofits-backend/lib/records"
	"nonprofits-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const directoryPage = `<html><body>
<a href="/candid/one">Org One Profile</a>
<a href="/candid/one#reviews">Org One Reviews</a>
<a href="/about">About this directory</a>
<a href="/find?page=2">Load more</a>
<iframe src="/frame"></iframe>
</body></html>`

const framePage = `<html><body>
<a href="/organization/two">Org Two</a>
</body></html>`

const directoryPage2 = `<html><body>
<a href="/nonprofit/three">Org Three</a>
<a href="/find?page=2">Next</a>
</body></html>`

const profileOne = `<html><head><title>Org One - Directory</title></head><body>
<h1>Org One</h1>
<div class="mission">We rely on volunteer mentors to support local students.</div>
<address>123 Main St, Louisville, KY 40202</address>
<a href="tel:+15025550100">(502) 555-0100</a>
<a href="https://www.facebook.com/orgone">Facebook</a>
<a href="https://orgone.org/home">Visit us</a>
<p>EIN: 12-3456789</p>
</body></html>`

const profileTwo = `<html><body>
<h1>Org Two</h1>
<div class="summary">Food and clothes drive organizers.</div>
<address>456 Oak Ave, Lexington, KY 40507</address>
</body></html>`

// has a name but neither website nor address, so it must be skipped
const profileThree = `<html><body><h1>Org Three</h1></body></html>`

func fixtureServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	serve := func(path, body string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(body))
		})
	}
	mux.HandleFunc("/find", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.URL.Query().Get("page") == "2" {
			w.Write([]byte(directoryPage2))
			return
		}
		w.Write([]byte(directoryPage))
	})
	serve("/frame", framePage)
	serve("/candid/one", profileOne)
	serve("/organization/two", profileTwo)
	serve("/nonprofit/three", profileThree)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, baseUrl string) *Client {
	client, err := NewClient(context.Background(), ClientOptions{
		BaseUrl:  baseUrl,
		MinDelay: time.Millisecond,
		MaxDelay: 2 * time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestCollectCandidates(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/scrapers/cfl")
	defer cleanup()

	server := fixtureServer(t)
	client := newTestClient(t, server.URL+"/find")

	candidates, err := client.CollectCandidates(context.Background(), server.URL+"/find")
	require.NoError(t, err)

	// one from the main document, one from the iframe, one from the
	// second page; the fragment url and /about are excluded
	require.Equal(t, []string{
		server.URL + "/candid/one",
		server.URL + "/organization/two",
		server.URL + "/nonprofit/three",
	}, candidates)
}

func TestPrioritize(t *testing.T) {
	links := []string{
		"https://example.org/nonprofit/generic",
		"https://example.org/organization/abc",
		"https://www.guidestar.org/profile/xyz",
	}
	require.Equal(t, []string{
		"https://www.guidestar.org/profile/xyz",
		"https://example.org/organization/abc",
		"https://example.org/nonprofit/generic",
	}, prioritize(links, 10))

	require.Len(t, prioritize(links, 2), 2)
}

func TestExtractProfile(t *testing.T) {
	server := fixtureServer(t)
	client := newTestClient(t, server.URL+"/find")

	page, err := client.FetchPage(context.Background(), server.URL+"/candid/one")
	require.NoError(t, err)

	row := ExtractProfile(context.Background(), page)
	require.Equal(t, "Org One", row.Name)
	require.Equal(t, "12-3456789", row.Ein)
	require.Equal(t, "We rely on volunteer mentors to support local students.", row.Mission)
	require.Equal(t, "123 Main St, Louisville, KY 40202", row.Address)
	require.Equal(t, "Louisville", row.City)
	require.Equal(t, "KY", row.State)
	// the facebook link is skipped in favor of the first real external host
	require.Equal(t, "https://orgone.org/home", row.Website)
	require.Equal(t, "(502) 555-0100", row.Phone)
	require.Equal(t, server.URL+"/candid/one", row.ProfileUrl)
}

func TestParseCityState(t *testing.T) {
	cases := []struct {
		addr  string
		city  string
		state string
	}{
		{"123 Main St, Louisville, KY 40202", "Louisville", "KY"},
		{"Louisville, KY", "Louisville", "KY"},
		{"Lexington, KY 40507", "Lexington", "KY"},
		{"no pattern here", "", ""},
		{"", "", ""},
	}
	for _, test := range cases {
		city, state := ParseCityState(test.addr)
		require.Equal(t, test.city, city, "addr: %q", test.addr)
		require.Equal(t, test.state, state, "addr: %q", test.addr)
	}
}

func TestRetain(t *testing.T) {
	require.False(t, Retain(records.RawProfile{Name: "X"}))
	require.True(t, Retain(records.RawProfile{Name: "X", Website: "https://w.org"}))
	require.True(t, Retain(records.RawProfile{Name: "X", Address: "123 Main St"}))
	require.False(t, Retain(records.RawProfile{Website: "https://w.org", Address: "123 Main St"}))
}

func TestDedupe(t *testing.T) {
	rows := []records.RawProfile{
		{Name: "First", Website: "https://Foo.ORG"},
		{Name: "Second", Website: "https://foo.org"},
		{Name: "Third", City: "Louisville"},
		{Name: "third", City: "LOUISVILLE"},
		{Name: "Fourth"},
	}
	out := Dedupe(rows)
	require.Len(t, out, 3)
	require.Equal(t, "First", out[0].Name)
	require.Equal(t, "Third", out[1].Name)
	require.Equal(t, "Fourth", out[2].Name)
}

func TestScrape(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/scrapers/cfl")
	defer cleanup()

	server := fixtureServer(t)
	client := newTestClient(t, server.URL+"/find")

	rows, err := client.Scrape(context.Background())
	require.NoError(t, err)

	// profile three has no website or address and is dropped
	require.Len(t, rows, 2)
	require.Equal(t, "Org One", rows[0].Name)
	require.Equal(t, "Org Two", rows[1].Name)
}
