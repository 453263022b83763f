package restriction

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

// FailureCode is the machine-readable reason a check-in was refused.
type FailureCode string

const (
	FailureIPNotAllowed FailureCode = "IP_NOT_ALLOWED"
	FailureIPUnknown    FailureCode = "IP_UNKNOWN"
	FailureGeoMissing   FailureCode = "GEO_MISSING"
	FailureGeoOutside   FailureCode = "GEO_OUTSIDE"
)

// HTTPStatus is 403 when the caller is somewhere they may not check in from
// and 400 when the request lacks what is needed to decide.
func (c FailureCode) HTTPStatus() int {
	switch c {
	case FailureIPNotAllowed, FailureGeoOutside:
		return http.StatusForbidden
	case FailureIPUnknown, FailureGeoMissing:
		return http.StatusBadRequest
	default:
		return http.StatusForbidden
	}
}

func (c FailureCode) Message() string {
	switch c {
	case FailureIPNotAllowed:
		return "Your IP is not in the allowed range for check-in."
	case FailureIPUnknown:
		return "Unable to determine your IP address. Please check your connection."
	case FailureGeoMissing:
		return "Please enable GPS to check-in from allowed location."
	case FailureGeoOutside:
		return "You are outside the allowed location radius. Check-in not permitted."
	default:
		return "Check-in restriction failed."
	}
}

// CheckContext is what a check-in attempt offers up for evaluation.
// Latitude and Longitude are loosely typed; see geo.ParseCoordinate.
type CheckContext struct {
	ClientIP  string
	Latitude  any
	Longitude any
}

type Decision struct {
	Passed      bool
	FailureCode FailureCode

	ClientIP      string
	Coordinate    *geo.Coordinate
	MatchedZoneID string

	// IPMismatch is set whenever the IP check failed, including when the
	// bypass policy let the attempt through anyway.
	IPMismatch bool
	IPBypassed bool

	HasIPRestriction  bool
	HasGeoRestriction bool
}

func Pass() Decision {
	return Decision{Passed: true}
}

type Summary struct {
	HasIPRestriction  bool `json:"hasIPRestriction"`
	HasGeoRestriction bool `json:"hasGeoRestriction"`
	RequiresLocation  bool `json:"requiresLocation"`
}
