package valueobject

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Travel estimate assumptions: average courier speed plus a fixed
// loading/parking buffer. The estimate is advisory and never gates a
// workflow transition.
const (
	averageSpeedKmh      = 40.0
	loadingBufferMinutes = 5
)

// Location is a geographic coordinate value object (degrees).
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewLocation creates a new Location
func NewLocation(lat, lng float64) Location {
	return Location{Lat: lat, Lng: lng}
}

// DistanceKm returns the great-circle distance to another location in
// kilometers using the haversine formula.
func (l Location) DistanceKm(other Location) float64 {
	lat1 := l.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - l.Lat) * math.Pi / 180
	dLng := (other.Lng - l.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// EstimateTravelMinutes returns the advisory door-to-door travel estimate
// for the distance to another location.
func (l Location) EstimateTravelMinutes(other Location) int {
	distance := l.DistanceKm(other)
	return int(math.Round(distance/averageSpeedKmh*60)) + loadingBufferMinutes
}

// IsZero reports whether the location is the zero coordinate.
func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0
}
