// Package directory persists normalized nonprofit rows and answers
// filtered and geo queries over HTTP.
package directory

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"nonprofits-backend/lib/records"
	"nonprofits-backend/services/directory/db"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/directory")

type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

// Router mounts the public API. There is intentionally no auth on any of
// these, including the destructive import; this serves a low-traffic
// internal tool.
func (s Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Get("/orgs", s.handleListOrgs)
	r.Get("/near", s.handleNear)
	r.Post("/admin/import-csv", s.handleImportCsv)
	return r
}

// OrgResponse mirrors an orgs table row as the API exposes it.
// DistanceKm is only present on /near results.
type OrgResponse struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Ein          string   `json:"ein"`
	Cause        string   `json:"cause"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Website      string   `json:"website"`
	Phone        string   `json:"phone"`
	Rating       float64  `json:"rating"`
	Needs        string   `json:"needs"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	LastVerified string   `json:"last_verified"`
	DistanceKm   *float64 `json:"distance_km,omitempty"`
}

func orgResponse(o db.Org) OrgResponse {
	return OrgResponse{
		ID:           o.ID,
		Name:         o.Name,
		Ein:          o.Ein,
		Cause:        o.Cause,
		City:         o.City,
		State:        o.State,
		Website:      o.Website,
		Phone:        o.Phone,
		Rating:       o.Rating,
		Needs:        o.Needs,
		Lat:          o.Lat,
		Lng:          o.Lng,
		LastVerified: o.LastVerified,
	}
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJson(w, status, map[string]string{"error": message})
}

// GET /orgs?q=&state=&minRating=&limit=
//
// All filters are conjunctive: exact state match, minimum rating, and a
// case-insensitive substring match of q against name, cause or needs.
// Missing or unparsable filters simply match everything.
func (s Service) handleListOrgs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ListOrgs")
	defer span.End()

	query := r.URL.Query()
	q := query.Get("q")
	state := query.Get("state")

	minRating := float64(0)
	if v, err := strconv.ParseFloat(query.Get("minRating"), 64); err == nil {
		minRating = v
	}
	limit := int64(50)
	if v, err := strconv.ParseInt(query.Get("limit"), 10, 64); err == nil {
		limit = v
	}

	rows, err := s.qry.FilterOrgs(ctx, db.FilterOrgsParams{
		State:     state,
		MinRating: minRating,
		Q:         q,
		Pattern:   "%" + strings.ToLower(q) + "%",
		RowLimit:  limit,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := []OrgResponse{}
	for _, row := range rows {
		out = append(out, orgResponse(row))
	}
	writeJson(w, http.StatusOK, out)
}

// GET /near?lat=&lng=&radiusKm=
//
// Computes haversine distance in-process over every row with non-zero
// coordinates. Full-table scan and sort is fine at this dataset size
// (dozens to low hundreds of rows); there is no spatial index.
func (s Service) handleNear(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Near")
	defer span.End()

	query := r.URL.Query()
	lat, latErr := strconv.ParseFloat(query.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(query.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeError(w, http.StatusBadRequest, "lat,lng required")
		return
	}

	radiusKm := float64(25)
	if v, err := strconv.ParseFloat(query.Get("radiusKm"), 64); err == nil {
		radiusKm = v
	}

	rows, err := s.qry.ListOrgsWithCoords(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := []OrgResponse{}
	for _, row := range rows {
		d := haversineKm(lat, lng, row.Lat, row.Lng)
		if d > radiusKm {
			continue
		}
		res := orgResponse(row)
		res.DistanceKm = &d
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})
	if len(out) > 50 {
		out = out[:50]
	}
	writeJson(w, http.StatusOK, out)
}

// POST /admin/import-csv (multipart, field `file`)
//
// Replaces the whole orgs table with the uploaded CSV inside one
// transaction, so a parse or insert failure rolls back to the prior
// contents instead of leaving a half-replaced table.
func (s Service) handleImportCsv(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ImportCsv")
	defer span.End()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	rows, err := records.ReadClean(file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteAllOrgs(ctx)
	if err == nil {
		err = insertOrgRows(ctx, txqry, rows)
	}
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.InfoContext(ctx, "imported orgs from csv", "rows", len(rows))
	writeJson(w, http.StatusOK, map[string]any{"ok": true, "imported": len(rows)})
}
