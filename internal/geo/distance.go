// Package geo provides position acquisition and great-circle distance math
// for the nearby-hospitals flow.
package geo

import (
	"fmt"
	"math"

	"github.com/symptoguide-engine/internal/domain"
)

const earthRadiusKm = 6371

// DistanceKm returns the haversine great-circle distance between two points
// in kilometers.
func DistanceKm(a, b domain.Coordinates) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// FormatDistance renders a kilometer distance as a short UI label: meters
// below one kilometer ("850 m"), otherwise one decimal ("2.3 km"). Negative
// input means the distance is unknown and yields an empty label.
func FormatDistance(km float64) string {
	if km < 0 {
		return ""
	}
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}

// DistanceLabel is the combined helper the hospital pipeline uses: distance
// from the user's position to the hospital, formatted, or empty when the
// hospital has no coordinates.
func DistanceLabel(user domain.Coordinates, hospital domain.HospitalRecord) string {
	if hospital.Coordinates == nil {
		return ""
	}
	return FormatDistance(DistanceKm(user, *hospital.Coordinates))
}
