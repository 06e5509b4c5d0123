// Package geospatial has the small amount of spherical geometry the
// nearby-markers query needs.
package geospatial

import "math"

const (
	earthRadiusM = 6371000.0
	metersPerDeg = 111320.0 // meridian arc length of one degree
	degToRad     = math.Pi / 180
)

// Haversine returns the great-circle distance in meters between two
// points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lon2 - lon1) * degToRad

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BoundingBox returns a box around a point that fully contains the
// circle of the given radius. It overshoots near the poles; callers
// filter candidates by true distance anyway.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / metersPerDeg
	lonDelta := radiusMeters / (metersPerDeg * math.Cos(lat*degToRad))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}
