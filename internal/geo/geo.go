// Package geo provides great-circle distance math and plausibility checks
// for raw GPS samples coming from the location collaborator.
package geo

import "math"

const earthRadiusKm = 6371.0

// Movement validation bounds. Distances below MinMovementKm are treated as
// GPS jitter while standing still; speeds outside the walking band are
// treated as drift or teleport artifacts and must not be accumulated.
const (
	MaxAccuracyMeters = 30.0
	MinMovementKm     = 0.005
	MinWalkSpeedKmh   = 0.5
	MaxWalkSpeedKmh   = 15.0
)

// DistanceKm returns the Haversine distance in kilometers between two
// coordinates. It is symmetric and returns 0 for identical points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// AcceptableAccuracy reports whether a sample's reported horizontal accuracy
// is good enough to use. Samples worse than MaxAccuracyMeters are noise.
func AcceptableAccuracy(accuracyMeters float64) bool {
	return accuracyMeters <= MaxAccuracyMeters
}

// ValidMovement reports whether a distance increment over the given elapsed
// time looks like actual human walking. The caller must discard rejected
// increments instead of accumulating them.
func ValidMovement(distanceKm float64, elapsedSeconds float64) bool {
	if distanceKm <= MinMovementKm {
		return false
	}
	if elapsedSeconds <= 0 {
		return false
	}
	speedKmh := distanceKm / (elapsedSeconds / 3600)
	return speedKmh > MinWalkSpeedKmh && speedKmh < MaxWalkSpeedKmh
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
