package agent

import "math"

const earthRadiusKm = 6371.0

// Coordinate is a WGS 84 point in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Distance returns the great-circle distance between two points in
// kilometres using the haversine formula, rounded to 2 decimal places.
// It is total and symmetric; any finite coordinate pair is valid input.
func Distance(a, b Coordinate) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return round2(earthRadiusKm * c)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// round2 rounds to 2 decimal places. Every money and distance figure goes
// through this before comparison, so ranking cannot flip on re-display.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
