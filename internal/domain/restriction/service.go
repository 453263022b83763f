package restriction

import "context"

// Evaluator decides whether a check-in attempt satisfies the employee's
// assigned restrictions. Refusals are reported in the Decision; the error
// is reserved for store failures.
type Evaluator interface {
	Evaluate(ctx context.Context, employeeID string, check CheckContext) (Decision, error)
	Summarize(ctx context.Context, employeeID string) (Summary, error)
}

type Service interface {
	ListIPRestrictions(ctx context.Context) ([]IPRestrictionResponse, error)
	GetIPRestriction(ctx context.Context, id string) (IPRestrictionResponse, error)
	CreateIPRestriction(ctx context.Context, req CreateIPRestrictionRequest) (IPRestrictionResponse, error)
	UpdateIPRestriction(ctx context.Context, req UpdateIPRestrictionRequest) (IPRestrictionResponse, error)
	DeleteIPRestriction(ctx context.Context, id string) error

	ListGeoRestrictions(ctx context.Context) ([]GeoRestrictionResponse, error)
	GetGeoRestriction(ctx context.Context, id string) (GeoRestrictionResponse, error)
	CreateGeoRestriction(ctx context.Context, req CreateGeoRestrictionRequest) (GeoRestrictionResponse, error)
	UpdateGeoRestriction(ctx context.Context, req UpdateGeoRestrictionRequest) (GeoRestrictionResponse, error)
	DeleteGeoRestriction(ctx context.Context, id string) error

	Assign(ctx context.Context, req AssignRestrictionRequest) (AssignmentResponse, error)
	Unassign(ctx context.Context, id string) error
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]AssignmentResponse, error)
}
