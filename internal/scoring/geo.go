package scoring

import "math"

// EarthRadiusMeters is the mean Earth radius used by Haversine.
const EarthRadiusMeters = 6371e3

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geofence is a required location a submission must be reported within.
type Geofence struct {
	Center  Coordinate `json:"center"`
	RadiusM float64    `json:"radius_m"`
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Coordinate) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// rounding can push h just outside [0, 1] near antipodal points
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// WithinRadius reports the distance between point and the fence center and
// whether it lies inside the fence. The boundary is inclusive.
func WithinRadius(point Coordinate, fence Geofence) (float64, bool) {
	distance := Haversine(point, fence.Center)
	return distance, distance <= fence.RadiusM
}

// Distance bonus tiers.
const (
	CloseRangeMeters = 50.0
	NearRangeMeters  = 100.0

	CloseRangeBonus = 1.2
	NearRangeBonus  = 1.1
	NoBonus         = 1.0
)

// DistanceBonus returns the score multiplier earned for a measured distance.
func DistanceBonus(distance float64) float64 {
	switch {
	case distance <= CloseRangeMeters:
		return CloseRangeBonus
	case distance <= NearRangeMeters:
		return NearRangeBonus
	default:
		return NoBonus
	}
}
