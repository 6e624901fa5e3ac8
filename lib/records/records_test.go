package records

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadRawRequiresHeader(t *testing.T) {
	_, err := ReadRaw(strings.NewReader(""))
	require.Error(t, err)
}

func TestReadRawMapsByColumnName(t *testing.T) {
	// columns may appear in any order, extra ones are ignored and
	// missing ones read as empty
	csv := "website,name,extra\nhttps://w.org,Org One,whatever\n"
	rows, err := ReadRaw(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Org One", rows[0].Name)
	require.Equal(t, "https://w.org", rows[0].Website)
	require.Equal(t, "", rows[0].Address)
}

func TestCleanRoundTrip(t *testing.T) {
	rows := []CleanOrg{
		{
			Name:    "Commas, Inc.",
			Cause:   "a \"quoted\" mission",
			City:    "Louisville",
			State:   "KY",
			Website: "https://w.org",
			Rating:  "4.1",
			Needs:   "Volunteers needed",
			Lat:     "38.25",
			Lng:     "-85.76",
		},
	}
	buf := &strings.Builder{}
	require.NoError(t, WriteClean(buf, rows))

	parsed, err := ReadClean(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Equal(t, rows, parsed)
}
