// Package geo computes great-circle distances and circular geofence membership.
package geo

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the mean Earth radius used by HaversineDistance.
const EarthRadiusMeters = 6371000

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether both components are finite and in range.
func (c Coordinate) Valid() bool {
	return IsValidLatitude(c.Latitude) && IsValidLongitude(c.Longitude)
}

func IsValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) && lat >= -90 && lat <= 90
}

func IsValidLongitude(lon float64) bool {
	return !math.IsNaN(lon) && !math.IsInf(lon, 0) && lon >= -180 && lon <= 180
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// HaversineDistance returns the distance between a and b in meters.
// Invalid coordinates yield +Inf so that radius checks fail closed.
func HaversineDistance(a, b Coordinate) float64 {
	if !a.Valid() || !b.Valid() {
		return math.Inf(1)
	}

	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	lat1Rad := toRadians(a.Latitude)
	lat2Rad := toRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// IsWithinGeoZone reports whether client lies within radiusMeters of center.
// A non-positive radius never matches, not even at the center itself.
func IsWithinGeoZone(client, center Coordinate, radiusMeters float64) bool {
	if !client.Valid() || !center.Valid() {
		return false
	}
	if math.IsNaN(radiusMeters) || radiusMeters <= 0 {
		return false
	}
	return HaversineDistance(client, center) <= radiusMeters
}

// ParseCoordinate coerces loosely typed latitude and longitude values, as they
// arrive from JSON bodies or form fields, into a validated Coordinate.
func ParseCoordinate(lat, lon any) (Coordinate, bool) {
	latF, ok := toFloat(lat)
	if !ok {
		return Coordinate{}, false
	}
	lonF, ok := toFloat(lon)
	if !ok {
		return Coordinate{}, false
	}
	c := Coordinate{Latitude: latF, Longitude: lonF}
	if !c.Valid() {
		return Coordinate{}, false
	}
	return c, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	case *float64:
		if n == nil {
			return 0, false
		}
		return *n, true
	case *string:
		if n == nil {
			return 0, false
		}
		return toFloat(*n)
	default:
		return 0, false
	}
}
