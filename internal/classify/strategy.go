package classify

import (
	"slices"
	"strings"

	"github.com/woozymasta/ssamap/internal/dataset"
)

// Strategy selects African records from a dataset.
type Strategy interface {
	Name() string
	// Applicable reports whether the dataset carries what the strategy needs.
	Applicable(ds *dataset.Dataset) bool
	Match(r dataset.CountryRecord) bool
}

// AttributeEquals matches records whose column equals a value, ignoring case and padding.
type AttributeEquals struct {
	Column string
	Value  string
}

// Name implements Strategy.
func (s AttributeEquals) Name() string { return s.Column + "=" + s.Value }

// Applicable implements Strategy.
func (s AttributeEquals) Applicable(ds *dataset.Dataset) bool { return ds.HasColumn(s.Column) }

// Match implements Strategy. Unlike a plain equality it ignores case and
// surrounding spaces, so padded DBF values such as "africa " also match.
func (s AttributeEquals) Match(r dataset.CountryRecord) bool {
	v, ok := r.Attr(s.Column)
	return ok && strings.EqualFold(strings.TrimSpace(v), s.Value)
}

// ISOInList matches records whose ISO-3 code is one of Codes.
type ISOInList struct {
	Columns []string
	Codes   []string
}

// Name implements Strategy.
func (s ISOInList) Name() string { return "iso-list" }

// Applicable implements Strategy.
func (s ISOInList) Applicable(ds *dataset.Dataset) bool { return hasAny(ds, s.Columns) }

// Match implements Strategy.
func (s ISOInList) Match(r dataset.CountryRecord) bool {
	iso := isoOf(r, s.Columns)
	return iso != "" && slices.Contains(s.Codes, iso)
}

// Chain returns the continent strategies in evaluation order:
// every continent-like column, then the ISO code list.
func Chain(continentColumns, isoColumns []string, value string, codes []string) []Strategy {
	chain := make([]Strategy, 0, len(continentColumns)+1)
	for _, c := range continentColumns {
		chain = append(chain, AttributeEquals{Column: c, Value: value})
	}
	return append(chain, ISOInList{Columns: isoColumns, Codes: upper(codes)})
}

// selectContinent evaluates strategies in order and returns the first non-empty subset
// together with the name of the strategy that produced it.
func selectContinent(ds *dataset.Dataset, chain []Strategy) ([]dataset.CountryRecord, string, bool) {
	for _, s := range chain {
		if !s.Applicable(ds) {
			continue
		}

		var subset []dataset.CountryRecord
		for _, r := range ds.Records {
			if s.Match(r) {
				subset = append(subset, r)
			}
		}

		if len(subset) > 0 {
			return subset, s.Name(), true
		}
	}

	return nil, "", false
}

func hasAny(ds *dataset.Dataset, columns []string) bool {
	for _, c := range columns {
		if ds.HasColumn(c) {
			return true
		}
	}
	return false
}

// isoOf returns the first usable ISO-3 code among the columns.
func isoOf(r dataset.CountryRecord, columns []string) string {
	for _, c := range columns {
		if v, ok := r.Attr(c); ok {
			if iso := dataset.NormalizeISO(v); iso != "" {
				return iso
			}
		}
	}
	return ""
}

func upper(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToUpper(strings.TrimSpace(v))
	}
	return out
}
