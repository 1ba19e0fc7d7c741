package dataset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/woozymasta/ssamap/internal/geo"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/rs/zerolog/log"
)

// ErrNoAttributes is returned when the attribute table is missing or has no columns.
var ErrNoAttributes = errors.New("shapefile has no attribute table")

// companion returns the path of a sidecar file next to the .shp.
func companion(shpPath, ext string) string {
	return strings.TrimSuffix(shpPath, ".shp") + ext
}

// Load reads a shapefile and its attribute table into a Dataset.
// Records are kept in file order.
func Load(path string) (*Dataset, error) {
	// the reader silently skips a missing .dbf and yields nameless records
	dbfPath := companion(path, ".dbf")
	if _, err := os.Stat(dbfPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoAttributes, err)
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	defer func() { _ = r.Close() }()

	fields := r.Fields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAttributes, dbfPath)
	}

	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = strings.TrimRight(f.String(), "\x00 ")
	}

	log.Debug().Strs("columns", columns).Msg("Dataset columns")

	ds := &Dataset{Columns: columns}
	skipped := 0

	for r.Next() {
		n, shape := r.Shape()

		mp, ok := toMultiPolygon(shape)
		if !ok {
			skipped++
			continue
		}

		attrs := make(map[string]string, len(columns))
		for i, col := range columns {
			attrs[col] = strings.Trim(r.ReadAttribute(n, i), "\x00 ")
		}

		ds.Records = append(ds.Records, NewRecord(attrs, mp))
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile: %w", err)
	}

	if skipped > 0 {
		log.Warn().Int("count", skipped).Msg("Skipped non-polygon shapes")
	}

	log.Info().
		Int("records", ds.Len()).
		Str("path", path).
		Msg("Dataset loaded")

	return ds, nil
}

func toMultiPolygon(shape shp.Shape) (orb.MultiPolygon, bool) {
	switch s := shape.(type) {
	case *shp.Polygon:
		return buildMultiPolygon(s.Parts, s.Points), true
	case *shp.PolygonZ:
		return buildMultiPolygon(s.Parts, s.Points), true
	case *shp.PolygonM:
		return buildMultiPolygon(s.Parts, s.Points), true
	default:
		return nil, false
	}
}

// buildMultiPolygon splits the flat point list into rings and groups holes
// under their shell.
func buildMultiPolygon(parts []int32, points []shp.Point) orb.MultiPolygon {
	rings := make([]orb.Ring, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || int(end) > len(points) {
			continue
		}

		ring := make(orb.Ring, 0, end-start+1)
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		rings = append(rings, geo.CloseRing(ring))
	}

	var mp orb.MultiPolygon
	var holes []orb.Ring

	for _, ring := range rings {
		if len(rings) == 1 || geo.IsOuter(ring) {
			mp = append(mp, orb.Polygon{ring})
		} else {
			holes = append(holes, ring)
		}
	}

	for _, hole := range holes {
		placed := false
		for i := range mp {
			if len(hole) > 0 && planar.RingContains(mp[i][0], hole[0]) {
				mp[i] = append(mp[i], hole)
				placed = true
				break
			}
		}
		// counter-clockwise ring outside every shell: written with the wrong winding
		if !placed {
			mp = append(mp, orb.Polygon{hole})
		}
	}

	return mp
}
