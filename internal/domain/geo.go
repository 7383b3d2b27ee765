package domain

import "math"

// KmPerDegree is the length of one degree of great circle used for distances.
const KmPerDegree = 111.111

// DistanceKm returns the great-circle distance between two points using the
// spherical law of cosines.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	// the clamp alone leaves ~1e-4 km when the sum rounds just below 1.0
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	cos := math.Cos(rad(lat2))*math.Cos(rad(lat1))*math.Cos(rad(lng2-lng1)) +
		math.Sin(rad(lat2))*math.Sin(rad(lat1))
	// identical points can overshoot 1.0, antipodes can undershoot -1.0
	cos = math.Max(-1.0, math.Min(1.0, cos))
	return KmPerDegree * math.Acos(cos) * 180 / math.Pi
}
