package restriction

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

type Type string

const (
	TypeIP  Type = "IP"
	TypeGeo Type = "GEO"
)

func (t Type) Valid() bool {
	return t == TypeIP || t == TypeGeo
}

type IPRestriction struct {
	ID         string
	Title      string
	AllowedIPs []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type GeoRestriction struct {
	ID           string
	Title        string
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (g GeoRestriction) Center() geo.Coordinate {
	return geo.Coordinate{Latitude: g.Latitude, Longitude: g.Longitude}
}

// Assignment links one employee to one IP or GEO restriction.
type Assignment struct {
	ID            string
	EmployeeID    string
	Type          Type
	RestrictionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined for listing
	EmployeeName     *string
	RestrictionTitle *string
}
