package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
)

func mustFeatureCollection(t *testing.T, raw string) *geojson.FeatureCollection {
	t.Helper()
	fc, err := geojson.UnmarshalFeatureCollection([]byte(raw))
	require.NoError(t, err)
	return fc
}

func TestBuildIndexDropsInvalidFeatures(t *testing.T) {
	fc := mustFeatureCollection(t, `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"properties": {"name": "Testland"},
				"geometry": {"type": "Polygon", "coordinates": [[[-125,36],[-120,36],[-120,39],[-125,39],[-125,36]]]}
			},
			{
				"type": "Feature",
				"properties": {},
				"geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
			},
			{
				"type": "Feature",
				"properties": {"name": 42},
				"geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
			},
			{
				"type": "Feature",
				"properties": {"name": "Pointland"},
				"geometry": {"type": "Point", "coordinates": [10, 10]}
			},
			{
				"type": "Feature",
				"properties": {"name": "Degenerate"},
				"geometry": {"type": "Polygon", "coordinates": [[[5,5],[5,5],[5,5],[5,5]]]}
			}
		]
	}`)

	idx := BuildIndex(fc)
	require.Equal(t, 1, idx.Len())

	name, ok := idx.Locate(orb.Point{-122.4, 37.7})
	require.True(t, ok)
	require.Equal(t, "Testland", name)
}

func TestBuildIndexEmptyDataset(t *testing.T) {
	fc := mustFeatureCollection(t, `{"type": "FeatureCollection", "features": []}`)
	idx := BuildIndex(fc)
	require.Equal(t, 0, idx.Len())

	_, ok := idx.Locate(orb.Point{-122.4, 37.7})
	require.False(t, ok)
}

func TestBuildIndexNilCollection(t *testing.T) {
	idx := BuildIndex(nil)
	require.Equal(t, 0, idx.Len())
}

func TestBuildIndexKeepsFirstDuplicateName(t *testing.T) {
	fc := mustFeatureCollection(t, `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"properties": {"name": "Twice"},
				"geometry": {"type": "Polygon", "coordinates": [[[0,0],[2,0],[2,2],[0,2],[0,0]]]}
			},
			{
				"type": "Feature",
				"properties": {"name": "Twice"},
				"geometry": {"type": "Polygon", "coordinates": [[[10,10],[12,10],[12,12],[10,12],[10,10]]]}
			}
		]
	}`)

	idx := BuildIndex(fc)
	require.Equal(t, 1, idx.Len())

	_, ok := idx.Locate(orb.Point{11, 11})
	require.False(t, ok, "second duplicate feature should have been dropped")
}

func TestLocateSmallestAreaWinsOnOverlap(t *testing.T) {
	// The enclave is fully inside the surrounding country; the smaller
	// polygon must win regardless of feature order in the dataset.
	fc := mustFeatureCollection(t, `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"properties": {"name": "Bigland"},
				"geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}
			},
			{
				"type": "Feature",
				"properties": {"name": "Enclave"},
				"geometry": {"type": "Polygon", "coordinates": [[[4,4],[6,4],[6,6],[4,6],[4,4]]]}
			}
		]
	}`)

	idx := BuildIndex(fc)
	require.Equal(t, 2, idx.Len())

	name, ok := idx.Locate(orb.Point{5, 5})
	require.True(t, ok)
	require.Equal(t, "Enclave", name)

	name, ok = idx.Locate(orb.Point{1, 1})
	require.True(t, ok)
	require.Equal(t, "Bigland", name)
}

func TestLocateMultiPolygon(t *testing.T) {
	fc := mustFeatureCollection(t, `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"properties": {"name": "Archipelago"},
				"geometry": {"type": "MultiPolygon", "coordinates": [
					[[[0,0],[2,0],[2,2],[0,2],[0,0]]],
					[[[20,20],[22,20],[22,22],[20,22],[20,20]]]
				]}
			}
		]
	}`)

	idx := BuildIndex(fc)
	require.Equal(t, 1, idx.Len())

	name, ok := idx.Locate(orb.Point{21, 21})
	require.True(t, ok)
	require.Equal(t, "Archipelago", name)

	_, ok = idx.Locate(orb.Point{10, 10})
	require.False(t, ok, "point between the islands is not contained")
}
