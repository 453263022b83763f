package restriction

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/ipmatch"
)

// IPBypassPolicy lets a non-production deployment accept check-ins whose IP
// is outside every allowed range. It never applies to IP_UNKNOWN or to GEO.
type IPBypassPolicy struct {
	Enabled bool
}

type EvaluatorImpl struct {
	lookup restriction.Lookup
	bypass IPBypassPolicy
}

func NewEvaluator(lookup restriction.Lookup, bypass IPBypassPolicy) restriction.Evaluator {
	return &EvaluatorImpl{lookup: lookup, bypass: bypass}
}

// Evaluate runs the IP check before the GEO check and stops at the first
// failure. An employee with no assignments always passes.
func (e *EvaluatorImpl) Evaluate(ctx context.Context, employeeID string, check restriction.CheckContext) (restriction.Decision, error) {
	ipIDs, geoIDs, err := e.assignedIDs(ctx, employeeID)
	if err != nil {
		return restriction.Decision{}, err
	}

	d := restriction.Decision{
		ClientIP:          ipmatch.Normalize(check.ClientIP),
		HasIPRestriction:  len(ipIDs) > 0,
		HasGeoRestriction: len(geoIDs) > 0,
	}
	if coord, ok := geo.ParseCoordinate(check.Latitude, check.Longitude); ok {
		d.Coordinate = &coord
	}

	if !d.HasIPRestriction && !d.HasGeoRestriction {
		d.Passed = true
		return d, nil
	}

	if d.HasIPRestriction {
		if d.ClientIP == "" {
			return fail(d, restriction.FailureIPUnknown), nil
		}

		ipRestrictions, err := e.lookup.GetIPRestrictions(ctx, ipIDs)
		if err != nil {
			return restriction.Decision{}, fmt.Errorf("get IP restrictions: %w", err)
		}
		var allowed []string
		for _, r := range ipRestrictions {
			allowed = append(allowed, r.AllowedIPs...)
		}

		if !ipmatch.MatchesAllowedIP(d.ClientIP, allowed) {
			d.IPMismatch = true
			if !e.bypass.Enabled {
				return fail(d, restriction.FailureIPNotAllowed), nil
			}
			d.IPBypassed = true
		}
	}

	if d.HasGeoRestriction {
		if d.Coordinate == nil {
			return fail(d, restriction.FailureGeoMissing), nil
		}

		zones, err := e.lookup.GetGeoRestrictions(ctx, geoIDs)
		if err != nil {
			return restriction.Decision{}, fmt.Errorf("get geo restrictions: %w", err)
		}
		for _, zone := range zones {
			if geo.IsWithinGeoZone(*d.Coordinate, zone.Center(), float64(zone.RadiusMeters)) {
				d.MatchedZoneID = zone.ID
				break
			}
		}
		if d.MatchedZoneID == "" {
			return fail(d, restriction.FailureGeoOutside), nil
		}
	}

	d.Passed = true
	return d, nil
}

func (e *EvaluatorImpl) Summarize(ctx context.Context, employeeID string) (restriction.Summary, error) {
	ipIDs, geoIDs, err := e.assignedIDs(ctx, employeeID)
	if err != nil {
		return restriction.Summary{}, err
	}
	return restriction.Summary{
		HasIPRestriction:  len(ipIDs) > 0,
		HasGeoRestriction: len(geoIDs) > 0,
		RequiresLocation:  len(geoIDs) > 0,
	}, nil
}

// assignedIDs partitions the employee's assignments by type, dropping duplicates.
func (e *EvaluatorImpl) assignedIDs(ctx context.Context, employeeID string) (ipIDs, geoIDs []string, err error) {
	assignments, err := e.lookup.GetAssignmentsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, nil, fmt.Errorf("get restriction assignments: %w", err)
	}

	seen := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		key := string(a.Type) + ":" + a.RestrictionID
		if seen[key] {
			continue
		}
		seen[key] = true

		switch a.Type {
		case restriction.TypeIP:
			ipIDs = append(ipIDs, a.RestrictionID)
		case restriction.TypeGeo:
			geoIDs = append(geoIDs, a.RestrictionID)
		}
	}
	return ipIDs, geoIDs, nil
}

func fail(d restriction.Decision, code restriction.FailureCode) restriction.Decision {
	d.Passed = false
	d.FailureCode = code
	return d
}
