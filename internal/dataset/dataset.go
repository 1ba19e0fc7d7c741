// Package dataset acquires and loads the country boundary dataset.
package dataset

import (
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

// Column names used by the Natural Earth admin-0 release.
const (
	ColumnName      = "NAME"
	ColumnISO       = "ISO_A3"
	ColumnADM0      = "ADM0_A3"
	ColumnContinent = "CONTINENT"
	ColumnRegion    = "REGION_UN"
)

// noCode is the Natural Earth placeholder for territories without an ISO code.
const noCode = "-99"

// CountryRecord is one country or territory row.
type CountryRecord struct {
	Attributes    map[string]string
	Name          string
	ISO           string
	Continent     string
	Region        string
	Geometry      orb.MultiPolygon
	Supplementary bool
}

// Attr returns an attribute value by column name.
func (r CountryRecord) Attr(column string) (string, bool) {
	v, ok := r.Attributes[column]
	return v, ok
}

// Dataset is an ordered collection of country records with the column set they were read with.
type Dataset struct {
	Columns []string
	Records []CountryRecord
}

// HasColumn reports whether the dataset carries the named attribute.
func (d *Dataset) HasColumn(name string) bool {
	return slices.Contains(d.Columns, name)
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// Append adds supplementary records. Records whose ISO code already exists
// in the dataset are skipped. It returns the number of records added.
func (d *Dataset) Append(records ...CountryRecord) int {
	known := make(map[string]bool, len(d.Records))
	for _, r := range d.Records {
		if r.ISO != "" {
			known[r.ISO] = true
		}
	}

	added := 0
	for _, r := range records {
		if r.ISO != "" && known[r.ISO] {
			log.Warn().
				Str("name", r.Name).
				Str("iso", r.ISO).
				Msg("Supplementary record already present in dataset, skipping")
			continue
		}

		r.Supplementary = true
		if r.Attributes == nil {
			r.Attributes = map[string]string{}
		}
		d.fillAttributes(&r)

		d.Records = append(d.Records, r)
		if r.ISO != "" {
			known[r.ISO] = true
		}
		added++
	}

	return added
}

// fillAttributes mirrors typed fields into the attribute map for every column
// the dataset knows, so attribute based filters see synthetic records too.
func (d *Dataset) fillAttributes(r *CountryRecord) {
	set := func(column, value string) {
		if value == "" || !d.HasColumn(column) {
			return
		}
		if _, ok := r.Attributes[column]; !ok {
			r.Attributes[column] = value
		}
	}

	set(ColumnName, r.Name)
	set(ColumnISO, r.ISO)
	set(ColumnADM0, r.ISO)
	set(ColumnContinent, r.Continent)
	set("continent", r.Continent)
	set(ColumnRegion, r.Continent)
}

// NewRecord builds a record from raw attributes, resolving the typed fields
// from the well known Natural Earth columns.
func NewRecord(attrs map[string]string, geometry orb.MultiPolygon) CountryRecord {
	r := CountryRecord{
		Attributes: attrs,
		Geometry:   geometry,
		Name:       attrs[ColumnName],
		Continent:  firstNonEmpty(attrs[ColumnContinent], attrs["continent"]),
		Region:     attrs[ColumnRegion],
	}

	r.ISO = NormalizeISO(attrs[ColumnISO])
	if r.ISO == "" {
		r.ISO = NormalizeISO(attrs[ColumnADM0])
	}

	return r
}

// NormalizeISO upper-cases a code and maps the "-99" placeholder to empty.
func NormalizeISO(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == noCode {
		return ""
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
