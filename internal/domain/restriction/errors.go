package restriction

import "errors"

var (
	ErrIPRestrictionNotFound  = errors.New("IP restriction not found")
	ErrGeoRestrictionNotFound = errors.New("geo restriction not found")
	ErrAssignmentNotFound     = errors.New("restriction assignment not found")
	ErrAssignmentExists       = errors.New("restriction already assigned to this employee")
	ErrRestrictionInUse       = errors.New("employees are still assigned to this restriction")
)
