// Package bbox provides an axis-aligned WGS84 bounding box used to
// select stops by geographic location.
package bbox

// Bbox is an axis-aligned lon/lat rectangle. Ordering of the corners is
// not validated; callers are trusted to pass min <= max.
type Bbox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// New builds a Bbox from the WGS84 corners (min_lon, min_lat, max_lon, max_lat).
func New(minLon, minLat, maxLon, maxLat float64) Bbox {
	return Bbox{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}
}

// Contains reports whether (lat, lon) falls within the box, inclusive on
// all four edges.
func (b Bbox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
