// api/geo/index.go
package geo

import (
	"log"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// countryEntry is one prepared country geometry: the bounding box gives a
// cheap reject before the exact point-in-polygon test.
type countryEntry struct {
	name  string
	geom  orb.Geometry
	bound orb.Bound
	area  float64
}

// CountryIndex maps points to country names via point-in-polygon tests.
// It is immutable after BuildIndex and safe for concurrent reads, so one
// index is built per process lifetime and shared by all resolutions.
type CountryIndex struct {
	entries []countryEntry
}

// BuildIndex prepares a CountryIndex from a boundary FeatureCollection.
// Features without a string "name" property, with geometries other than
// Polygon/MultiPolygon, or with empty/zero-area geometries are dropped.
// Duplicate names keep the first occurrence.
//
// Entries are ordered smallest-area-first and Locate returns the first
// containment hit, so where simplified polygons overlap (disputed borders,
// enclaves) the smaller country wins. That is an accepted approximation,
// not a guaranteed globally-correct assignment.
//
// A nil collection yields an empty index: every lookup misses.
func BuildIndex(fc *geojson.FeatureCollection) *CountryIndex {
	idx := &CountryIndex{}
	if fc == nil {
		return idx
	}

	seen := make(map[string]bool)
	dropped := 0
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			dropped++
			continue
		}
		name, ok := f.Properties["name"].(string)
		if !ok || name == "" {
			dropped++
			continue
		}
		if seen[name] {
			dropped++
			continue
		}

		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			dropped++
			continue
		}

		area := math.Abs(planar.Area(f.Geometry))
		bound := f.Geometry.Bound()
		if area == 0 || bound.IsEmpty() {
			dropped++
			continue
		}

		seen[name] = true
		idx.entries = append(idx.entries, countryEntry{
			name:  name,
			geom:  f.Geometry,
			bound: bound,
			area:  area,
		})
	}

	sort.SliceStable(idx.entries, func(i, j int) bool {
		return idx.entries[i].area < idx.entries[j].area
	})

	log.Printf("Country index built: %d countries indexed, %d features dropped.", len(idx.entries), dropped)
	return idx
}

// Len reports the number of indexed countries.
func (ix *CountryIndex) Len() int {
	return len(ix.entries)
}

// Locate returns the name of the first (smallest-area) country whose
// geometry contains the point, or false if no country contains it.
func (ix *CountryIndex) Locate(pt orb.Point) (string, bool) {
	for i := range ix.entries {
		e := &ix.entries[i]
		if !e.bound.Contains(pt) {
			continue
		}
		switch g := e.geom.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, pt) {
				return e.name, true
			}
		case orb.MultiPolygon:
			if planar.MultiPolygonContains(g, pt) {
				return e.name, true
			}
		}
	}
	return "", false
}
