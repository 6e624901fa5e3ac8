// Package records defines the CSV artifacts the pipeline stages exchange:
// the raw rows the scraper emits and the cleaned rows the normalizer
// produces, which the directory service later seeds from.
package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// RawProfile is one organization as extracted from its profile page,
// before any enrichment.
type RawProfile struct {
	Name       string
	Ein        string
	Mission    string
	Address    string
	City       string
	State      string
	Website    string
	Phone      string
	Notes      string
	ProfileUrl string
}

// CleanOrg is one normalized organization row. Rating, Lat and Lng stay
// strings here because the CSV representation allows them to be empty,
// numeric coercion happens at insert time.
type CleanOrg struct {
	Name    string
	Ein     string
	Cause   string
	City    string
	State   string
	Website string
	Phone   string
	Rating  string
	Needs   string
	Lat     string
	Lng     string
}

var rawHeader = []string{
	"name", "ein", "mission", "address", "city",
	"state", "website", "phone", "notes", "profileUrl",
}

var cleanHeader = []string{
	"name", "ein", "cause", "city", "state",
	"website", "phone", "rating", "needs", "lat", "lng",
}

// readTable parses a CSV document with a required header row into maps
// keyed by column name. Unknown columns are kept, missing ones read as "".
func readTable(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv is missing a header row")
	}
	if err != nil {
		return nil, err
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func ReadRaw(r io.Reader) ([]RawProfile, error) {
	table, err := readTable(r)
	if err != nil {
		return nil, err
	}
	rows := make([]RawProfile, len(table))
	for i, row := range table {
		rows[i] = RawProfile{
			Name:       row["name"],
			Ein:        row["ein"],
			Mission:    row["mission"],
			Address:    row["address"],
			City:       row["city"],
			State:      row["state"],
			Website:    row["website"],
			Phone:      row["phone"],
			Notes:      row["notes"],
			ProfileUrl: row["profileUrl"],
		}
	}
	return rows, nil
}

func WriteRaw(w io.Writer, rows []RawProfile) error {
	writer := csv.NewWriter(w)
	err := writer.Write(rawHeader)
	if err != nil {
		return err
	}
	for _, r := range rows {
		err := writer.Write([]string{
			r.Name, r.Ein, r.Mission, r.Address, r.City,
			r.State, r.Website, r.Phone, r.Notes, r.ProfileUrl,
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadClean(r io.Reader) ([]CleanOrg, error) {
	table, err := readTable(r)
	if err != nil {
		return nil, err
	}
	rows := make([]CleanOrg, len(table))
	for i, row := range table {
		rows[i] = CleanOrg{
			Name:    row["name"],
			Ein:     row["ein"],
			Cause:   row["cause"],
			City:    row["city"],
			State:   row["state"],
			Website: row["website"],
			Phone:   row["phone"],
			Rating:  row["rating"],
			Needs:   row["needs"],
			Lat:     row["lat"],
			Lng:     row["lng"],
		}
	}
	return rows, nil
}

func WriteClean(w io.Writer, rows []CleanOrg) error {
	writer := csv.NewWriter(w)
	err := writer.Write(cleanHeader)
	if err != nil {
		return err
	}
	for _, r := range rows {
		err := writer.Write([]string{
			r.Name, r.Ein, r.Cause, r.City, r.State,
			r.Website, r.Phone, r.Rating, r.Needs, r.Lat, r.Lng,
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRawFile overwrites path with the given rows.
func WriteRawFile(path string, rows []RawProfile) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteRaw(f, rows)
}

func ReadRawFile(path string) ([]RawProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRaw(f)
}

// WriteCleanFile overwrites path with the given rows.
func WriteCleanFile(path string, rows []CleanOrg) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteClean(f, rows)
}

func ReadCleanFile(path string) ([]CleanOrg, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadClean(f)
}
