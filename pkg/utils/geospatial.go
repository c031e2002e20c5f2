package utils

import (
	"math"
)

// HaversineDistance calculates the distance between two points on Earth
// using the Haversine formula. Returns distance in kilometers.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6371 // Earth's radius in kilometers

	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180
	lng1Rad := lng1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lng2Rad := lng2 * math.Pi / 180

	// Haversine formula
	dlat := lat2Rad - lat1Rad
	dlng := lng2Rad - lng1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlng/2)*math.Sin(dlng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// PathDistance sums the haversine distance over consecutive coordinate pairs.
// Used to report the total distance covered by a walk from its recorded
// location points. Coordinates are (lat, lng) pairs in recording order.
func PathDistance(coords [][2]float64) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		total += HaversineDistance(
			coords[i-1][0], coords[i-1][1],
			coords[i][0], coords[i][1],
		)
	}
	return total
}

// ValidCoordinates checks latitude/longitude ranges.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
