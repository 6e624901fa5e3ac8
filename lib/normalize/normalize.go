// Package normalize enriches raw scraped rows into the cleaned rows the
// directory service is seeded from.
package normalize

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"nonprofits-backend/lib/geocode"
	"nonprofits-backend/lib/records"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("nonprofits.lib.normalize")

// InferNeeds derives a coarse needs tag from mission text. The keyword
// precedence (volunteer, then donation, then item drives) is load-bearing:
// downstream consumers expect exactly one tag chosen in this order.
func InferNeeds(mission string) string {
	s := strings.ToLower(mission)
	if strings.Contains(s, "volunteer") {
		return "Volunteers needed"
	}
	if strings.Contains(s, "donation") || strings.Contains(s, "donate") {
		return "Donations requested"
	}
	if strings.Contains(s, "drive") && (strings.Contains(s, "food") || strings.Contains(s, "clothes")) {
		return "Item drive"
	}
	return ""
}

// SeedRating produces the placeholder rating: 3.8 base, +0.3 for having a
// website, +0.2 for a mission longer than 60 characters, capped at 5.
func SeedRating(website, mission string) float64 {
	r := 3.8
	if website != "" {
		r += 0.3
	}
	if len(mission) > 60 {
		r += 0.2
	}
	return math.Min(5, r)
}

// Run turns raw rows into clean rows in input order. Geocoding goes
// through the client's cache; rows that cannot be geocoded still come out,
// just without coordinates.
func Run(ctx context.Context, rows []records.RawProfile, geo *geocode.Client) []records.CleanOrg {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(rows)))

	out := make([]records.CleanOrg, len(rows))
	for i, r := range rows {
		cause := strings.TrimSpace(r.Mission)
		rating := SeedRating(r.Website, cause)

		query := strings.TrimSpace(r.Address)
		if query == "" {
			query = joinNonEmpty(r.City, r.State)
		}
		coords := geo.Lookup(ctx, query)

		name := r.Name
		if name == "" {
			name = r.ProfileUrl
		}

		out[i] = records.CleanOrg{
			Name:    name,
			Ein:     r.Ein,
			Cause:   cause,
			City:    r.City,
			State:   r.State,
			Website: r.Website,
			Phone:   r.Phone,
			Rating:  strconv.FormatFloat(rating, 'f', -1, 64),
			Needs:   InferNeeds(cause),
			Lat:     coords.Lat,
			Lng:     coords.Lng,
		}
	}
	return out
}

func joinNonEmpty(city, state string) string {
	parts := []string{}
	if city != "" {
		parts = append(parts, city)
	}
	if state != "" {
		parts = append(parts, state)
	}
	return strings.Join(parts, ", ")
}

// RunFile is Run over file paths: read raw CSV, enrich, overwrite the
// clean CSV.
func RunFile(ctx context.Context, inPath, outPath string, geo *geocode.Client) (int, error) {
	rows, err := records.ReadRawFile(inPath)
	if err != nil {
		return 0, err
	}
	out := Run(ctx, rows, geo)
	err = records.WriteCleanFile(outPath, out)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "wrote normalized rows", "path", outPath, "rows", len(out))
	return len(out), nil
}
