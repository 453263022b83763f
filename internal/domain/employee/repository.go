package employee

import "context"

// EmployeeRepository returns ErrEmployeeNotFound for unknown ids.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
}
