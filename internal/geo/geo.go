// Package geo holds the coordinate types and great-circle math used to
// annotate reviews with their distance from the requesting client.
package geo

import "math"

// EarthRadiusKM is the mean Earth radius.
const EarthRadiusKM = 6371.0

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both coordinates are finite numbers. NaN and
// infinity come in through query params and must never reach the math.
func (p Point) Valid() bool {
	return isFinite(p.Lat) && isFinite(p.Lng)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Haversine returns the great-circle distance between two points in
// kilometers, unrounded.
func Haversine(from, to Point) float64 {
	lat1Rad := from.Lat * math.Pi / 180
	lon1Rad := from.Lng * math.Pi / 180
	lat2Rad := to.Lat * math.Pi / 180
	lon2Rad := to.Lng * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

// DistanceKM returns the distance between two points rounded to one
// decimal place, the precision shown to clients.
func DistanceKM(from, to Point) float64 {
	return math.Round(Haversine(from, to)*10) / 10
}

// DistanceTo computes the rounded distance from viewer to a review
// location. It returns nil when the viewer supplied no point, when the
// review carries no coordinates, or when either side is not finite;
// callers serialize nil as an absent field rather than a zero.
func DistanceTo(viewer *Point, lat, lng *float64) *float64 {
	if viewer == nil || lat == nil || lng == nil {
		return nil
	}
	if !viewer.Valid() {
		return nil
	}
	target := Point{Lat: *lat, Lng: *lng}
	if !target.Valid() {
		return nil
	}
	d := DistanceKM(*viewer, target)
	return &d
}
