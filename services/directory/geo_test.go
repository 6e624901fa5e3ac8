package directory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHaversineKm(t *testing.T) {
	// same point
	require.InDelta(t, 0, haversineKm(38.25, -85.76, 38.25, -85.76), 1e-9)

	// Louisville to Lexington is roughly 112 km
	d := haversineKm(38.2527, -85.7585, 38.0406, -84.5037)
	require.InDelta(t, 112, d, 2)

	// symmetric
	require.InDelta(t, d, haversineKm(38.0406, -84.5037, 38.2527, -85.7585), 1e-9)
}
