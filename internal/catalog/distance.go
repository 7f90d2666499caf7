package catalog

import "math"

const earthRadiusMeters = 6371000

// distanceMeters returns the great-circle distance between two coordinates
// using the haversine formula. Accurate to well under the precision a
// "parks near me" radius needs.
func distanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const deg = math.Pi / 180

	dLat := (lat2 - lat1) * deg
	dLng := (lng2 - lng1) * deg

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*deg)*math.Cos(lat2*deg)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
