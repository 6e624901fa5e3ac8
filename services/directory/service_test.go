package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"nonprofits-backend/lib/records"
	"nonprofits-backend/lib/testutil"
	"nonprofits-backend/services/directory/db"

	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) Service {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/directory",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)
	t.Cleanup(func() { res.DB.Close() })
	return NewService(res.DB)
}

func createOrg(t *testing.T, s Service, arg db.CreateOrgParams) {
	err := s.qry.CreateOrg(context.Background(), arg)
	require.NoError(t, err)
}

func getJson(t *testing.T, s Service, url string, out any) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		err := json.Unmarshal(rec.Body.Bytes(), out)
		require.NoError(t, err)
	}
	return rec
}

func TestListOrgsFilters(t *testing.T) {
	s := setupService(t)

	createOrg(t, s, db.CreateOrgParams{Name: "Food Bank", Cause: "Feeding families", Needs: "Donations requested", State: "KY", Rating: 4.5})
	createOrg(t, s, db.CreateOrgParams{Name: "Art House", Cause: "Community arts", State: "KY", Rating: 3.8})
	createOrg(t, s, db.CreateOrgParams{Name: "Food Pantry", Cause: "Food access", State: "IN", Rating: 4.2})

	t.Run("no filters", func(t *testing.T) {
		var out []OrgResponse
		rec := getJson(t, s, "/orgs", &out)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, out, 3)
	})

	t.Run("state and minRating", func(t *testing.T) {
		var out []OrgResponse
		getJson(t, s, "/orgs?state=KY&minRating=4", &out)
		require.Len(t, out, 1)
		require.Equal(t, "Food Bank", out[0].Name)
		for _, o := range out {
			require.Equal(t, "KY", o.State)
			require.GreaterOrEqual(t, o.Rating, float64(4))
		}
	})

	t.Run("q matches name, cause or needs", func(t *testing.T) {
		var out []OrgResponse
		getJson(t, s, "/orgs?q=FOOD", &out)
		require.Len(t, out, 2)

		out = nil
		getJson(t, s, "/orgs?q=arts", &out)
		require.Len(t, out, 1)
		require.Equal(t, "Art House", out[0].Name)

		out = nil
		getJson(t, s, "/orgs?q=donations", &out)
		require.Len(t, out, 1)
		require.Equal(t, "Food Bank", out[0].Name)
	})

	t.Run("limit caps results", func(t *testing.T) {
		var out []OrgResponse
		getJson(t, s, "/orgs?limit=2", &out)
		require.Len(t, out, 2)
	})
}

func TestNear(t *testing.T) {
	s := setupService(t)

	createOrg(t, s, db.CreateOrgParams{Name: "Close", Lat: 38.26, Lng: -85.75, Rating: 4})
	createOrg(t, s, db.CreateOrgParams{Name: "Closer", Lat: 38.251, Lng: -85.761, Rating: 4})
	createOrg(t, s, db.CreateOrgParams{Name: "Lexington", Lat: 38.0406, Lng: -84.5037, Rating: 4})
	// zero coordinates mean "never geocoded", excluded even though the
	// query point itself is nearby
	createOrg(t, s, db.CreateOrgParams{Name: "No Coords", Lat: 0, Lng: -85.76, Rating: 4})

	t.Run("requires numeric lat and lng", func(t *testing.T) {
		rec := getJson(t, s, "/near?lat=abc&lng=-85.76", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = getJson(t, s, "/near?lat=38.25", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("filters, sorts and annotates", func(t *testing.T) {
		var out []OrgResponse
		rec := getJson(t, s, "/near?lat=38.25&lng=-85.76&radiusKm=10", &out)
		require.Equal(t, http.StatusOK, rec.Code)

		require.Len(t, out, 2)
		require.Equal(t, "Closer", out[0].Name)
		require.Equal(t, "Close", out[1].Name)
		for _, o := range out {
			require.NotNil(t, o.DistanceKm)
			require.LessOrEqual(t, *o.DistanceKm, float64(10))
		}
		require.Less(t, *out[0].DistanceKm, *out[1].DistanceKm)
	})

	t.Run("default radius", func(t *testing.T) {
		var out []OrgResponse
		getJson(t, s, "/near?lat=38.25&lng=-85.76", &out)
		// Lexington is ~112km away, outside the 25km default
		require.Len(t, out, 2)
	})
}

func cleanCsv(rows []records.CleanOrg) *bytes.Buffer {
	buf := &bytes.Buffer{}
	err := records.WriteClean(buf, rows)
	if err != nil {
		panic(err)
	}
	return buf
}

func multipartCsv(t *testing.T, csv []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "nonprofits.csv")
	require.NoError(t, err)
	_, err = part.Write(csv)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestImportCsv(t *testing.T) {
	s := setupService(t)

	createOrg(t, s, db.CreateOrgParams{Name: "Old Row", State: "KY", Rating: 4})

	csv := cleanCsv([]records.CleanOrg{
		{Name: "New One", State: "KY", Rating: "4.1", Lat: "38.25", Lng: "-85.76"},
		{Name: "New Two", State: "IN", Rating: "not-a-number"},
	})
	body, contentType := multipartCsv(t, csv.Bytes())

	req := httptest.NewRequest(http.MethodPost, "/admin/import-csv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Ok       bool `json:"ok"`
		Imported int  `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.True(t, res.Ok)
	require.Equal(t, 2, res.Imported)

	var out []OrgResponse
	getJson(t, s, "/orgs", &out)
	require.Len(t, out, 2)
	require.Equal(t, "New One", out[0].Name)
	require.InDelta(t, 4.1, out[0].Rating, 1e-9)
	// non-numeric rating coerces to 0
	require.Equal(t, float64(0), out[1].Rating)
}

func TestImportCsvMissingFile(t *testing.T) {
	s := setupService(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/import-csv", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportCsvFailureKeepsPriorRows(t *testing.T) {
	s := setupService(t)

	createOrg(t, s, db.CreateOrgParams{Name: "Survivor", State: "KY", Rating: 4})

	// an empty upload has no header row and fails to parse, the prior
	// contents must remain untouched
	body, contentType := multipartCsv(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/admin/import-csv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var out []OrgResponse
	getJson(t, s, "/orgs", &out)
	require.Len(t, out, 1)
	require.Equal(t, "Survivor", out[0].Name)
}

func TestSeedFromCsv(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "nonprofits.csv")
	err := records.WriteCleanFile(path, []records.CleanOrg{
		{Name: "Seeded One", City: "Louisville", State: "KY", Website: "https://one.org", Phone: "555-0100", Rating: "4.1", Lat: "38.25", Lng: "-85.76"},
		{Name: "Seeded Two", State: "KY", Rating: "3.8"},
	})
	require.NoError(t, err)

	require.NoError(t, s.SeedFromCsv(ctx, path))

	var out []OrgResponse
	getJson(t, s, "/orgs", &out)
	require.Len(t, out, 2)
	// fields survive the csv round trip into the store verbatim
	require.Equal(t, "Seeded One", out[0].Name)
	require.Equal(t, "Louisville", out[0].City)
	require.Equal(t, "KY", out[0].State)
	require.Equal(t, "https://one.org", out[0].Website)
	require.Equal(t, "555-0100", out[0].Phone)

	// seeding only happens when the table is empty
	require.NoError(t, s.SeedFromCsv(ctx, path))
	out = nil
	getJson(t, s, "/orgs", &out)
	require.Len(t, out, 2)
}

func TestSeedFromCsvMissingFile(t *testing.T) {
	s := setupService(t)

	err := s.SeedFromCsv(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)

	var out []OrgResponse
	getJson(t, s, "/orgs", &out)
	require.Len(t, out, 0)
}
