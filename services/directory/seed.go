package directory

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"nonprofits-backend/lib/records"
	"nonprofits-backend/services/directory/db"
)

// SeedFromCsv populates the orgs table from the clean CSV at path, but
// only when the table is empty and the file exists. Called once at
// startup; later runs with a populated table are no-ops.
func (s Service) SeedFromCsv(ctx context.Context, path string) error {
	ctx, span := tracer.Start(ctx, "SeedFromCsv")
	defer span.End()

	count, err := s.qry.CountOrgs(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.DebugContext(ctx, "orgs table already populated", "rows", count)
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.InfoContext(ctx, "no seed csv present, starting empty", "path", path)
		return nil
	}

	rows, err := records.ReadCleanFile(path)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = insertOrgRows(ctx, s.qry.WithTx(tx), rows)
	if err != nil {
		return err
	}
	err = tx.Commit()
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "seeded orgs from csv", "path", path, "rows", len(rows))
	return nil
}

func insertOrgRows(ctx context.Context, qry *db.Queries, rows []records.CleanOrg) error {
	for _, r := range rows {
		err := qry.CreateOrg(ctx, db.CreateOrgParams{
			Name:    r.Name,
			Ein:     r.Ein,
			Cause:   r.Cause,
			City:    r.City,
			State:   r.State,
			Website: r.Website,
			Phone:   r.Phone,
			Rating:  coerceFloat(r.Rating),
			Needs:   r.Needs,
			Lat:     coerceFloat(r.Lat),
			Lng:     coerceFloat(r.Lng),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// non-numeric rating/lat/lng coerce to 0, matching the seeding contract
func coerceFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
