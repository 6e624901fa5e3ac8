package serviceutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePort(t *testing.T) {
	t.Setenv("PORT", "")
	require.Equal(t, 8080, ResolvePort(0))
	require.Equal(t, 9000, ResolvePort(9000))

	t.Setenv("PORT", "3000")
	require.Equal(t, 3000, ResolvePort(9000))

	// a non-numeric PORT falls through to the config value
	t.Setenv("PORT", "not-a-port")
	require.Equal(t, 9000, ResolvePort(9000))
}
