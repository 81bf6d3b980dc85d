// api/geo/resolver.go
package geo

import (
	"regexp"
	"strings"

	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
)

// GeohashPattern is the well-formedness gate for stored geohashes, 5 to 12
// characters; the geo sample query pushes the same pattern into SQL. Note
// the j-n range also admits 'l', which the base-32 geohash alphabet
// excludes, so passing the pattern does not guarantee the string is
// decodable.
const GeohashPattern = `^[0-9b-hj-np-z]{5,12}$`

// geohashAlphabet is the base-32 geohash alphabet: a, i, l and o are not
// part of it.
const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

var geohashRe = regexp.MustCompile(GeohashPattern)

// ValidGeohash reports whether s is a well-formed geohash per GeohashPattern.
func ValidGeohash(s string) bool {
	return geohashRe.MatchString(s)
}

// decodable reports whether every character of s is in the geohash alphabet.
// Decoding a string with a character outside it would produce garbage
// coordinates rather than an error, so such input must be screened out here.
func decodable(s string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(geohashAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

// ResolveCountry decodes a geohash to its cell-center coordinates and maps
// them to a country name via the index. Malformed or undecodable input and
// points outside every indexed country all yield ok=false; resolution never
// fails with an error, so callers must handle the unresolved case
// explicitly.
func ResolveCountry(gh string, index *CountryIndex) (string, bool) {
	if index == nil || !ValidGeohash(gh) || !decodable(gh) {
		return "", false
	}
	lat, lng := geohash.Decode(gh)
	return index.Locate(orb.Point{lng, lat})
}
