// Package catalog holds the immutable reference table of food commodities and
// their emission factors, indexed for nearest-neighbor search over name
// embeddings. The index is built once at process startup and is safe for
// unlimited concurrent readers afterwards.
package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrCatalogUnavailable reports that the backing catalog source could not
	// be read or is missing required columns.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrIndexNotReady reports a query against an index whose Build has not
	// completed.
	ErrIndexNotReady = errors.New("catalog index not ready")
)

// Entry is one food commodity and its carbon footprint in kg CO2eq per kg
// (or liter) of the commodity.
type Entry struct {
	Name           string  `json:"name"`
	EmissionFactor float64 `json:"cf_kg_per_kg"`
}

// Column names required in the catalog CSV.
const (
	itemColumn = "item"
	cfColumn   = "cf_kg_per_kg"
)

// ParseCatalog reads the catalog CSV. The header must contain the "item" and
// "cf_kg_per_kg" columns. Emission factors using a decimal comma are accepted;
// rows with empty names or unparsable factors are dropped, matching the source
// data's habit of mixing notes in with the numbers.
func ParseCatalog(data []byte) ([]Entry, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrCatalogUnavailable, err)
	}

	itemIdx, cfIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case itemColumn:
			itemIdx = i
		case cfColumn:
			cfIdx = i
		}
	}
	if itemIdx < 0 || cfIdx < 0 {
		return nil, fmt.Errorf("%w: expected columns %q and %q, found %v",
			ErrCatalogUnavailable, itemColumn, cfColumn, header)
	}

	var entries []Entry
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		if itemIdx >= len(record) || cfIdx >= len(record) {
			continue
		}

		name := strings.TrimSpace(record[itemIdx])
		factor, perr := parseFactor(record[cfIdx])
		if name == "" || perr != nil || factor < 0 {
			continue
		}

		entries = append(entries, Entry{Name: name, EmissionFactor: factor})
	}

	return entries, nil
}

func parseFactor(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(raw, ",", "."), " ", "")
	return strconv.ParseFloat(cleaned, 64)
}
