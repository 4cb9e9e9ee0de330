package geo

import "math"

// Mean Earth radius in meters.
const earthRadiusM = 6371000.0

// HaversineMeters returns the great-circle distance in meters between two
// WGS 84 coordinates given in decimal degrees.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// KmToMiles converts kilometers to statute miles.
func KmToMiles(km float64) float64 {
	return km * 0.621371
}
