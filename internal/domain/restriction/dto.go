package restriction

import (
	"math"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/ipmatch"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// IP RESTRICTION DTOs
// ========================================

type CreateIPRestrictionRequest struct {
	Title      string   `json:"title"`
	AllowedIPs []string `json:"allowed_ips"`
}

func (r *CreateIPRestrictionRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Title = strings.TrimSpace(r.Title)
	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title is required",
		})
	} else if len(r.Title) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not exceed 100 characters",
		})
	}

	cleaned := make([]string, 0, len(r.AllowedIPs))
	for _, entry := range r.AllowedIPs {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		cleaned = append(cleaned, entry)
	}
	r.AllowedIPs = cleaned

	if len(r.AllowedIPs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "allowed_ips",
			Message: "at least one IP address or CIDR range is required",
		})
	}

	var invalid []string
	for _, entry := range r.AllowedIPs {
		if !ipmatch.IsValidIPv4(entry) && !ipmatch.IsValidCIDR(entry) {
			invalid = append(invalid, entry)
		}
	}
	if len(invalid) > 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "allowed_ips",
			Message: "invalid IP address or CIDR range: " + strings.Join(invalid, ", "),
		})
	}

	return errs.Err()
}

type UpdateIPRestrictionRequest struct {
	ID string `json:"-"`
	CreateIPRestrictionRequest
}

func (r *UpdateIPRestrictionRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id must be a valid UUID"})
	}
	if err := r.CreateIPRestrictionRequest.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	return errs.Err()
}

type IPRestrictionResponse struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	AllowedIPs []string `json:"allowed_ips"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

// ========================================
// GEO RESTRICTION DTOs
// ========================================

type CreateGeoRestrictionRequest struct {
	Title        string   `json:"title"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	RadiusMeters *float64 `json:"radius_meters"`
}

func (r *CreateGeoRestrictionRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Title = strings.TrimSpace(r.Title)
	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title is required",
		})
	} else if len(r.Title) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not exceed 100 characters",
		})
	}

	if r.Latitude == nil || !geo.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be a number between -90 and 90",
		})
	}

	if r.Longitude == nil || !geo.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be a number between -180 and 180",
		})
	}

	// Zero-radius zones can never match, so they are refused outright.
	if r.RadiusMeters == nil || *r.RadiusMeters <= 0 || *r.RadiusMeters != math.Trunc(*r.RadiusMeters) || *r.RadiusMeters > math.MaxInt32 {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Message: "radius_meters must be a positive integer",
		})
	}

	return errs.Err()
}

// Radius returns the validated radius in whole meters.
func (r *CreateGeoRestrictionRequest) Radius() int {
	if r.RadiusMeters == nil {
		return 0
	}
	return int(*r.RadiusMeters)
}

type UpdateGeoRestrictionRequest struct {
	ID string `json:"-"`
	CreateGeoRestrictionRequest
}

func (r *UpdateGeoRestrictionRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id must be a valid UUID"})
	}
	if err := r.CreateGeoRestrictionRequest.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	return errs.Err()
}

type GeoRestrictionResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius_meters"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// ========================================
// ASSIGNMENT DTOs
// ========================================

type AssignRestrictionRequest struct {
	EmployeeID    string `json:"employee_id"`
	Type          Type   `json:"restriction_type"`
	RestrictionID string `json:"restriction_id"`
}

func (r *AssignRestrictionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	r.Type = Type(strings.ToUpper(strings.TrimSpace(string(r.Type))))
	if !r.Type.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "restriction_type",
			Message: "restriction_type must be one of: IP, GEO",
		})
	}

	if validator.IsEmpty(r.RestrictionID) {
		errs = append(errs, validator.ValidationError{
			Field:   "restriction_id",
			Message: "restriction_id is required",
		})
	} else if !validator.IsValidUUID(r.RestrictionID) {
		errs = append(errs, validator.ValidationError{
			Field:   "restriction_id",
			Message: "restriction_id must be a valid UUID",
		})
	}

	return errs.Err()
}

type AssignmentFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Type       *Type   `json:"restriction_type,omitempty"`
}

func (f *AssignmentFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	if f.Type != nil {
		t := Type(strings.ToUpper(string(*f.Type)))
		f.Type = &t
		if !t.Valid() {
			errs = append(errs, validator.ValidationError{
				Field:   "restriction_type",
				Message: "restriction_type must be one of: IP, GEO",
			})
		}
	}

	return errs.Err()
}

type AssignmentResponse struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	EmployeeName     *string `json:"employee_name,omitempty"`
	Type             Type    `json:"restriction_type"`
	RestrictionID    string  `json:"restriction_id"`
	RestrictionTitle *string `json:"restriction_title,omitempty"`
	CreatedAt        string  `json:"created_at"`
}
