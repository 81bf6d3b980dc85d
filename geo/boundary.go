// api/geo/boundary.go
package geo

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/paulmach/orb/geojson"
)

// DefaultBoundaryURL is the public world country-boundary dataset the index
// is built from when no override is configured.
const DefaultBoundaryURL = "https://raw.githubusercontent.com/johan/world.geo.json/master/countries.geo.json"

const boundaryFetchTimeout = 10 * time.Second

// LoadFeatureCollection fetches the country-boundary GeoJSON dataset.
// BOUNDARY_FILE points at a local file and takes precedence; otherwise the
// dataset is fetched from BOUNDARY_URL (or the default) with a timeout.
//
// Failure here is not fatal to the process: callers are expected to degrade
// to an empty index, which disables the geo distribution but nothing else.
func LoadFeatureCollection() (*geojson.FeatureCollection, error) {
	if path := os.Getenv("BOUNDARY_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read boundary file %s: %w", path, err)
		}
		return parseFeatureCollection(data)
	}

	url := os.Getenv("BOUNDARY_URL")
	if url == "" {
		url = DefaultBoundaryURL
	}

	client := &http.Client{Timeout: boundaryFetchTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch boundary dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("boundary dataset fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read boundary dataset body: %w", err)
	}
	return parseFeatureCollection(data)
}

func parseFeatureCollection(data []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse boundary GeoJSON: %w", err)
	}
	return fc, nil
}
