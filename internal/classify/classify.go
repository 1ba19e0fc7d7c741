// Package classify selects Sub-Saharan African countries and marks focus countries.
package classify

import (
	"errors"
	"slices"
	"strings"

	"github.com/woozymasta/ssamap/internal/config"
	"github.com/woozymasta/ssamap/internal/dataset"
	"github.com/woozymasta/ssamap/internal/style"

	"github.com/rs/zerolog/log"
)

// ErrNoContinentAttribute is returned when no strategy can identify African
// countries and the unfiltered fallback is not allowed.
var ErrNoContinentAttribute = errors.New("no attribute identifies African countries")

// StrategyUnfiltered names the degraded fallback that keeps every record.
const StrategyUnfiltered = "unfiltered"

// Record is a country with its classification outcome.
type Record struct {
	dataset.CountryRecord

	// ISO is the code used for classification, empty when the dataset has none.
	ISO    string
	Target string // canonical focus country name, set when highlighted
	Style  style.Style

	IsSubSaharan  bool
	IsHighlighted bool
}

// Result holds the African subset with derived flags.
type Result struct {
	Strategy string
	Records  []Record
	Degraded bool
}

// SubSaharan returns the records flagged as Sub-Saharan, in dataset order.
func (r *Result) SubSaharan() []Record {
	out := make([]Record, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.IsSubSaharan {
			out = append(out, rec)
		}
	}
	return out
}

// Highlighted returns the highlighted Sub-Saharan records.
func (r *Result) Highlighted() []Record {
	var out []Record
	for _, rec := range r.SubSaharan() {
		if rec.IsHighlighted {
			out = append(out, rec)
		}
	}
	return out
}

// Styled returns the Sub-Saharan records with presentation derived from the palette.
func (r *Result) Styled(p style.Palette) []Record {
	out := r.SubSaharan()
	for i := range out {
		out[i].Style = p.Style(out[i].IsSubSaharan, out[i].IsHighlighted, out[i].ISO)
	}
	return out
}

// Run classifies the dataset. The dataset is not modified and every call on
// the same input yields the same result.
func Run(ds *dataset.Dataset, opts config.Classification) (*Result, error) {
	chain := Chain(opts.ContinentColumns, opts.ISOColumns, opts.ContinentValue, opts.AfricanISO)

	africa, strategy, ok := selectContinent(ds, chain)
	degraded := false
	if !ok {
		if !opts.AllowUnfiltered {
			return nil, ErrNoContinentAttribute
		}

		log.Warn().Msg("No suitable column found to identify African countries, using all countries instead")
		africa = ds.Records
		strategy = StrategyUnfiltered
		degraded = true
	}

	log.Debug().
		Str("strategy", strategy).
		Int("records", len(africa)).
		Msg("Continent filter applied")

	hasISO := hasAny(ds, opts.ISOColumns)
	excluded := northAfricaFilter(opts, hasISO)

	preds := []Predicate{NameMatch(opts.Targets)}
	if hasISO {
		preds = append(preds, ISOMatch(opts.Targets))
	}
	highlighted := Any(preds...)

	res := &Result{
		Strategy: strategy,
		Degraded: degraded,
		Records:  make([]Record, 0, len(africa)),
	}

	for _, cr := range africa {
		rec := Record{CountryRecord: cr}
		if hasISO {
			rec.ISO = isoOf(cr, opts.ISOColumns)
		}

		subject := Subject{Name: nameOf(cr, opts.NameColumn), ISO: rec.ISO}

		rec.IsSubSaharan = !excluded(subject)
		rec.IsHighlighted = highlighted(subject)
		if rec.IsHighlighted {
			if t, ok := targetOf(opts.Targets, subject); ok {
				rec.Target = t.Name
			}
		}

		res.Records = append(res.Records, rec)
	}

	return res, nil
}

// Pipeline classifies and styles in one step and returns the Sub-Saharan records ready to draw.
func Pipeline(ds *dataset.Dataset, opts config.Classification, p style.Palette) ([]Record, error) {
	res, err := Run(ds, opts)
	if err != nil {
		return nil, err
	}
	return res.Styled(p), nil
}

// MissingTargets lists the targets no Sub-Saharan record was highlighted for.
func MissingTargets(res *Result, targets []config.Target) []config.Target {
	found := make(map[string]bool)
	for _, r := range res.Highlighted() {
		found[r.Target] = true
	}

	var missing []config.Target
	for _, t := range targets {
		if !found[t.Name] {
			missing = append(missing, t)
		}
	}
	return missing
}

// northAfricaFilter reports whether a subject is one of the excluded North African states,
// by ISO code when the dataset has one and by name otherwise.
func northAfricaFilter(opts config.Classification, hasISO bool) func(Subject) bool {
	codes := make([]string, 0, len(opts.NorthAfrica))
	names := make([]string, 0, len(opts.NorthAfrica))
	for _, c := range opts.NorthAfrica {
		codes = append(codes, strings.ToUpper(c.ISO))
		names = append(names, c.Name)
	}

	if hasISO {
		return func(s Subject) bool { return slices.Contains(codes, s.ISO) }
	}
	return func(s Subject) bool { return slices.Contains(names, s.Name) }
}

func nameOf(r dataset.CountryRecord, column string) string {
	if v, ok := r.Attr(column); ok && v != "" {
		return v
	}
	return r.Name
}
