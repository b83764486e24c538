// Package geo holds geodetic positions and the distance metric used for checkpoints.
package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius (IUGG).
const EarthRadiusMeters = 6371008.8

// Position holds latitude, longitude (degrees) and altitude (meters).
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%.6f, %.6f, %.1f)", p.Lat, p.Lon, p.Alt)
}

// LatLng converts p to an s2 coordinate, dropping altitude.
func (p Position) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lon)
}

// Distance returns the great-circle distance between a and b in meters.
// Altitude does not contribute.
func Distance(a, b Position) float64 {
	if a.Lat == b.Lat && a.Lon == b.Lon {
		return 0
	}
	return AngleToMeters(a.LatLng().Distance(b.LatLng()))
}

// AngleToMeters converts a central angle to an arc length on the Earth sphere.
func AngleToMeters(a s1.Angle) float64 {
	return a.Radians() * EarthRadiusMeters
}

// Offset returns the position reached by travelling meters from p along
// headingDeg (0 = north, 90 = east). Altitude is copied unchanged.
func Offset(p Position, headingDeg, meters float64) Position {
	if meters == 0 {
		return p
	}
	d := meters / EarthRadiusMeters
	h := headingDeg * math.Pi / 180
	lat1 := p.Lat * math.Pi / 180
	lon1 := p.Lon * math.Pi / 180

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(h))
	lon2 := lon1 + math.Atan2(math.Sin(h)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	ll := s2.LatLng{Lat: s1.Angle(lat2), Lng: s1.Angle(lon2)}.Normalized()
	return Position{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees(), Alt: p.Alt}
}
