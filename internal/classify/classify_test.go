package classify

import (
	"testing"

	"github.com/woozymasta/ssamap/internal/config"
	"github.com/woozymasta/ssamap/internal/dataset"
	"github.com/woozymasta/ssamap/internal/style"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(attrs map[string]string) dataset.CountryRecord {
	return dataset.NewRecord(attrs, nil)
}

func fixture(columns []string, rows ...map[string]string) *dataset.Dataset {
	ds := &dataset.Dataset{Columns: columns}
	for _, r := range rows {
		ds.Records = append(ds.Records, record(r))
	}
	return ds
}

func names(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestEndToEndScenario(t *testing.T) {
	columns := []string{"NAME", "ISO_A3", "CONTINENT"}
	ds := fixture(columns,
		map[string]string{"NAME": "Kenya", "ISO_A3": "KEN", "CONTINENT": "Africa"},
		map[string]string{"NAME": "South Africa", "ISO_A3": "ZAF", "CONTINENT": "Africa"},
		map[string]string{"NAME": "Dem. Rep. Congo", "ISO_A3": "COD", "CONTINENT": "Africa"},
		map[string]string{"NAME": "Somalia", "ISO_A3": "SOM", "CONTINENT": "Africa"},
		map[string]string{"NAME": "Nigeria", "ISO_A3": "NGA", "CONTINENT": "Africa"},
		map[string]string{"NAME": "Algeria", "ISO_A3": "DZA", "CONTINENT": "Africa"},
		map[string]string{"NAME": "France", "ISO_A3": "-99", "CONTINENT": "Europe"},
	)

	res, err := Run(ds, config.Default().Classification)
	require.NoError(t, err)

	assert.Equal(t, "CONTINENT=Africa", res.Strategy)
	assert.False(t, res.Degraded)
	assert.Equal(t,
		[]string{"Kenya", "South Africa", "Dem. Rep. Congo", "Somalia", "Nigeria"},
		names(res.SubSaharan()))
	assert.ElementsMatch(t,
		[]string{"Kenya", "South Africa", "Dem. Rep. Congo", "Somalia"},
		names(res.Highlighted()))

	for _, r := range res.Highlighted() {
		assert.NotEmpty(t, r.Target, r.Name)
	}
	assert.Empty(t, MissingTargets(res, config.Default().Classification.Targets))
}

func TestDRCNameVariantsAllHighlighted(t *testing.T) {
	opts := config.Default().Classification

	for _, variant := range opts.Targets[0].Variants {
		// no ISO column: the name pass alone must recognise the spelling
		ds := fixture([]string{"NAME", "CONTINENT"},
			map[string]string{"NAME": variant, "CONTINENT": "Africa"},
		)
		res, err := Run(ds, opts)
		require.NoError(t, err)
		require.Len(t, res.Highlighted(), 1, variant)
		assert.Equal(t, "Democratic Republic of the Congo", res.Highlighted()[0].Target)
	}
}

func TestHighlightIsUnionOfNameAndISO(t *testing.T) {
	columns := []string{"NAME", "ISO_A3", "CONTINENT"}
	ds := fixture(columns,
		// name unknown, ISO matches
		map[string]string{"NAME": "Congo (Kinshasa)", "ISO_A3": "COD", "CONTINENT": "Africa"},
		// name matches, ISO placeholder
		map[string]string{"NAME": "Federal Republic of Somalia", "ISO_A3": "-99", "CONTINENT": "Africa"},
		// neither
		map[string]string{"NAME": "Congo", "ISO_A3": "COG", "CONTINENT": "Africa"},
	)

	res, err := Run(ds, config.Default().Classification)
	require.NoError(t, err)

	got := map[string]bool{}
	for _, r := range res.Records {
		got[r.Name] = r.IsHighlighted
	}
	assert.Equal(t, map[string]bool{
		"Congo (Kinshasa)":            true,
		"Federal Republic of Somalia": true,
		"Congo":                       false,
	}, got)
}

func TestPredicates(t *testing.T) {
	targets := config.Default().Classification.Targets

	byName := NameMatch(targets)
	byISO := ISOMatch(targets)
	both := Any(byName, byISO)

	cases := []struct {
		subject Subject
		name    bool
		iso     bool
	}{
		{Subject{Name: "S. Africa", ISO: ""}, true, false},
		{Subject{Name: "RSA", ISO: "ZAF"}, false, true},
		{Subject{Name: "Kenya", ISO: "KEN"}, true, true},
		{Subject{Name: "Nigeria", ISO: "NGA"}, false, false},
		{Subject{}, false, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.name, byName(c.subject), "name %+v", c.subject)
		assert.Equal(t, c.iso, byISO(c.subject), "iso %+v", c.subject)
		assert.Equal(t, c.name || c.iso, both(c.subject), "any %+v", c.subject)
	}
}

func africanFixture(codes []string) *dataset.Dataset {
	ds := &dataset.Dataset{Columns: []string{"NAME", "ISO_A3"}}
	for _, code := range codes {
		ds.Records = append(ds.Records, record(map[string]string{"NAME": code, "ISO_A3": code}))
	}
	return ds
}

func TestSubSaharanCountFromISOList(t *testing.T) {
	opts := config.Default().Classification
	ds := africanFixture(opts.AfricanISO)
	// plus non-African rows that the ISO list strategy must drop
	ds.Records = append(ds.Records,
		record(map[string]string{"NAME": "France", "ISO_A3": "FRA"}),
		record(map[string]string{"NAME": "Brazil", "ISO_A3": "BRA"}),
	)

	res, err := Run(ds, opts)
	require.NoError(t, err)

	assert.Equal(t, "iso-list", res.Strategy)
	assert.Len(t, res.Records, 54)

	sub := res.SubSaharan()
	assert.Len(t, sub, 49)

	excluded := map[string]bool{}
	for _, r := range res.Records {
		if !r.IsSubSaharan {
			excluded[r.ISO] = true
		}
	}
	assert.Equal(t, map[string]bool{"DZA": true, "EGY": true, "LBY": true, "MAR": true, "TUN": true}, excluded)
}

func TestNorthAfricaByNameWithoutISO(t *testing.T) {
	ds := fixture([]string{"NAME", "REGION_UN"},
		map[string]string{"NAME": "Egypt", "REGION_UN": "Africa"},
		map[string]string{"NAME": "Morocco", "REGION_UN": "Africa"},
		map[string]string{"NAME": "Kenya", "REGION_UN": "Africa"},
		map[string]string{"NAME": "Spain", "REGION_UN": "Europe"},
	)

	res, err := Run(ds, config.Default().Classification)
	require.NoError(t, err)

	assert.Equal(t, "REGION_UN=Africa", res.Strategy)
	assert.Equal(t, []string{"Kenya"}, names(res.SubSaharan()))
	assert.Empty(t, res.SubSaharan()[0].ISO)
}

func TestStrategyChainSkipsEmptyResults(t *testing.T) {
	// CONTINENT exists but carries nothing usable; REGION_UN does
	ds := fixture([]string{"NAME", "CONTINENT", "REGION_UN"},
		map[string]string{"NAME": "Kenya", "CONTINENT": "", "REGION_UN": "Africa"},
		map[string]string{"NAME": "Chile", "CONTINENT": "", "REGION_UN": "Americas"},
	)

	res, err := Run(ds, config.Default().Classification)
	require.NoError(t, err)
	assert.Equal(t, "REGION_UN=Africa", res.Strategy)
	assert.Equal(t, []string{"Kenya"}, names(res.Records))
}

func TestStrategyApplicability(t *testing.T) {
	ds := fixture([]string{"NAME"}, map[string]string{"NAME": "Kenya"})

	for _, s := range Chain([]string{"CONTINENT"}, []string{"ISO_A3"}, "Africa", []string{"ken"}) {
		assert.False(t, s.Applicable(ds), s.Name())
	}

	iso := ISOInList{Columns: []string{"ISO_A3"}, Codes: []string{"KEN"}}
	assert.True(t, iso.Match(record(map[string]string{"ISO_A3": "ken"})))
	assert.False(t, iso.Match(record(map[string]string{"ISO_A3": "-99"})))

	attr := AttributeEquals{Column: "CONTINENT", Value: "Africa"}
	assert.True(t, attr.Match(record(map[string]string{"CONTINENT": " africa "})))
	assert.False(t, attr.Match(record(map[string]string{})))
}

func TestUnfilteredFallbackRequiresFlag(t *testing.T) {
	ds := fixture([]string{"NAME"},
		map[string]string{"NAME": "Kenya"},
		map[string]string{"NAME": "Egypt"},
		map[string]string{"NAME": "Peru"},
	)
	opts := config.Default().Classification

	_, err := Run(ds, opts)
	assert.ErrorIs(t, err, ErrNoContinentAttribute)

	opts.AllowUnfiltered = true
	res, err := Run(ds, opts)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, StrategyUnfiltered, res.Strategy)
	assert.Equal(t, []string{"Kenya", "Peru"}, names(res.SubSaharan()))
	assert.Equal(t, []string{"Kenya"}, names(res.Highlighted()))
}

func TestRunIsIdempotent(t *testing.T) {
	ds := africanFixture(config.Default().Classification.AfricanISO)
	opts := config.Default().Classification

	first, err := Run(ds, opts)
	require.NoError(t, err)
	second, err := Run(ds, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.Highlighted(), 4)
}

func TestSupplementaryRecordIsClassified(t *testing.T) {
	ds := fixture([]string{"NAME", "ISO_A3", "CONTINENT"},
		map[string]string{"NAME": "Kenya", "ISO_A3": "KEN", "CONTINENT": "Africa"},
	)
	ds.Append(dataset.CountryRecord{Name: "Comoros", ISO: "COM", Continent: "Africa"})

	res, err := Run(ds, config.Default().Classification)
	require.NoError(t, err)

	sub := res.SubSaharan()
	require.Len(t, sub, 2)
	assert.True(t, sub[1].Supplementary)
	assert.Equal(t, "COM", sub[1].ISO)
}

func TestMissingTargets(t *testing.T) {
	ds := fixture([]string{"NAME", "ISO_A3", "CONTINENT"},
		map[string]string{"NAME": "Kenya", "ISO_A3": "KEN", "CONTINENT": "Africa"},
	)
	targets := config.Default().Classification.Targets

	res, err := Run(ds, config.Default().Classification)
	require.NoError(t, err)

	missing := MissingTargets(res, targets)
	require.Len(t, missing, 3)
	for _, m := range missing {
		assert.NotEqual(t, "Kenya", m.Name)
	}
}

func TestPipelineStyles(t *testing.T) {
	ds := fixture([]string{"NAME", "ISO_A3", "CONTINENT"},
		map[string]string{"NAME": "Kenya", "ISO_A3": "KEN", "CONTINENT": "Africa"},
		map[string]string{"NAME": "Nigeria", "ISO_A3": "NGA", "CONTINENT": "Africa"},
		map[string]string{"NAME": "Egypt", "ISO_A3": "EGY", "CONTINENT": "Africa"},
	)
	palette := style.Builtin()[style.Focus]

	records, err := Pipeline(ds, config.Default().Classification, palette)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "#4b7bec", records[0].Style.Fill)
	assert.Equal(t, "#f2f2f2", records[1].Style.Fill)
	assert.Equal(t, palette.Style(true, false, "NGA"), records[1].Style)
}
