package geo

import "math"

const (
	earthRadiusM = 6371000.0
	// DefaultSpeedKmh is the assumed average urban driving speed.
	DefaultSpeedKmh = 40.0
	// DefaultBufferMin is a flat allowance for parking and entry.
	DefaultBufferMin = 5.0
)

// DistanceMeters returns the great-circle distance via the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// TravelTime converts the great-circle distance to driving minutes at the
// given speed and adds the parking/entry buffer.
func TravelTime(lat1, lon1, lat2, lon2, speedKmh, bufferMin float64) float64 {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	km := DistanceMeters(lat1, lon1, lat2, lon2) / 1000
	return km/speedKmh*60 + bufferMin
}

// TravelTimeMinutes is TravelTime with the default speed and buffer.
// Identical coordinates yield the buffer floor.
func TravelTimeMinutes(lat1, lon1, lat2, lon2 float64) float64 {
	return TravelTime(lat1, lon1, lat2, lon2, DefaultSpeedKmh, DefaultBufferMin)
}
