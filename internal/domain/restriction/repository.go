package restriction

import "context"

// Lookup is the read side the evaluator needs.
type Lookup interface {
	GetAssignmentsByEmployee(ctx context.Context, employeeID string) ([]Assignment, error)
	GetIPRestrictions(ctx context.Context, ids []string) ([]IPRestriction, error)
	GetGeoRestrictions(ctx context.Context, ids []string) ([]GeoRestriction, error)
}

type Repository interface {
	Lookup

	ListIPRestrictions(ctx context.Context) ([]IPRestriction, error)
	GetIPRestrictionByID(ctx context.Context, id string) (IPRestriction, error)
	CreateIPRestriction(ctx context.Context, r IPRestriction) (IPRestriction, error)
	UpdateIPRestriction(ctx context.Context, r IPRestriction) (IPRestriction, error)
	DeleteIPRestriction(ctx context.Context, id string) error

	ListGeoRestrictions(ctx context.Context) ([]GeoRestriction, error)
	GetGeoRestrictionByID(ctx context.Context, id string) (GeoRestriction, error)
	CreateGeoRestriction(ctx context.Context, r GeoRestriction) (GeoRestriction, error)
	UpdateGeoRestriction(ctx context.Context, r GeoRestriction) (GeoRestriction, error)
	DeleteGeoRestriction(ctx context.Context, id string) error

	// LockRestriction takes a row lock on one restriction so that deleting it
	// and assigning it serialize. Callers must be inside a transaction.
	LockRestriction(ctx context.Context, t Type, id string) error
	// CountAssignments counts assignments pointing at one restriction.
	CountAssignments(ctx context.Context, t Type, restrictionID string) (int64, error)
	ExistsAssignment(ctx context.Context, employeeID string, t Type, restrictionID string) (bool, error)
	CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
}
