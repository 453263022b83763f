package restriction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type RestrictionServiceImpl struct {
	tx              database.Transactor
	restrictionRepo restriction.Repository
	employeeRepo    employee.EmployeeRepository
}

func NewRestrictionService(tx database.Transactor, restrictionRepo restriction.Repository, employeeRepo employee.EmployeeRepository) restriction.Service {
	return &RestrictionServiceImpl{
		tx:              tx,
		restrictionRepo: restrictionRepo,
		employeeRepo:    employeeRepo,
	}
}

// ListIPRestrictions implements restriction.Service.
func (s *RestrictionServiceImpl) ListIPRestrictions(ctx context.Context) ([]restriction.IPRestrictionResponse, error) {
	items, err := s.restrictionRepo.ListIPRestrictions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list IP restrictions: %w", err)
	}
	responses := make([]restriction.IPRestrictionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, mapIPRestriction(item))
	}
	return responses, nil
}

// GetIPRestriction implements restriction.Service.
func (s *RestrictionServiceImpl) GetIPRestriction(ctx context.Context, id string) (restriction.IPRestrictionResponse, error) {
	if !validator.IsValidUUID(id) {
		return restriction.IPRestrictionResponse{}, restriction.ErrIPRestrictionNotFound
	}
	item, err := s.restrictionRepo.GetIPRestrictionByID(ctx, id)
	if err != nil {
		return restriction.IPRestrictionResponse{}, fmt.Errorf("failed to get IP restriction: %w", err)
	}
	return mapIPRestriction(item), nil
}

// CreateIPRestriction implements restriction.Service.
func (s *RestrictionServiceImpl) CreateIPRestriction(ctx context.Context, req restriction.CreateIPRestrictionRequest) (restriction.IPRestrictionResponse, error) {
	if err := req.Validate(); err != nil {
		return restriction.IPRestrictionResponse{}, err
	}

	created, err := s.restrictionRepo.CreateIPRestriction(ctx, restriction.IPRestriction{
		Title:      req.Title,
		AllowedIPs: req.AllowedIPs,
	})
	if err != nil {
		return restriction.IPRestrictionResponse{}, fmt.Errorf("failed to create IP restriction: %w", err)
	}

	slog.Info("IP restriction created", "restriction_id", created.ID, "entries", len(created.AllowedIPs))
	return mapIPRestriction(created), nil
}

// UpdateIPRestriction implements restriction.Service.
func (s *RestrictionServiceImpl) UpdateIPRestriction(ctx context.Context, req restriction.UpdateIPRestrictionRequest) (restriction.IPRestrictionResponse, error) {
	if err := req.Validate(); err != nil {
		return restriction.IPRestrictionResponse{}, err
	}

	updated, err := s.restrictionRepo.UpdateIPRestriction(ctx, restriction.IPRestriction{
		ID:         req.ID,
		Title:      req.Title,
		AllowedIPs: req.AllowedIPs,
	})
	if err != nil {
		return restriction.IPRestrictionResponse{}, fmt.Errorf("failed to update IP restriction: %w", err)
	}
	return mapIPRestriction(updated), nil
}

// DeleteIPRestriction implements restriction.Service.
func (s *RestrictionServiceImpl) DeleteIPRestriction(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return restriction.ErrIPRestrictionNotFound
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.deleteUnassigned(ctx, restriction.TypeIP, id, s.restrictionRepo.DeleteIPRestriction)
	})
	if err != nil {
		return err
	}
	slog.Info("IP restriction deleted", "restriction_id", id)
	return nil
}

// ListGeoRestrictions implements restriction.Service.
func (s *RestrictionServiceImpl) ListGeoRestrictions(ctx context.Context) ([]restriction.GeoRestrictionResponse, error) {
	items, err := s.restrictionRepo.ListGeoRestrictions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list geo restrictions: %w", err)
	}
	responses := make([]restriction.GeoRestrictionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, mapGeoRestriction(item))
	}
	return responses, nil
}

// GetGeoRestriction implements restriction.Service.
func (s *RestrictionServiceImpl) GetGeoRestriction(ctx context.Context, id string) (restriction.GeoRestrictionResponse, error) {
	if !validator.IsValidUUID(id) {
		return restriction.GeoRestrictionResponse{}, restriction.ErrGeoRestrictionNotFound
	}
	item, err := s.restrictionRepo.GetGeoRestrictionByID(ctx, id)
	if err != nil {
		return restriction.GeoRestrictionResponse{}, fmt.Errorf("failed to get geo restriction: %w", err)
	}
	return mapGeoRestriction(item), nil
}

// CreateGeoRestriction implements restriction.Service.
func (s *RestrictionServiceImpl) CreateGeoRestriction(ctx context.Context, req restriction.CreateGeoRestrictionRequest) (restriction.GeoRestrictionResponse, error) {
	if err := req.Validate(); err != nil {
		return restriction.GeoRestrictionResponse{}, err
	}

	created, err := s.restrictionRepo.CreateGeoRestriction(ctx, restriction.GeoRestriction{
		Title:        req.Title,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		RadiusMeters: req.Radius(),
	})
	if err != nil {
		return restriction.GeoRestrictionResponse{}, fmt.Errorf("failed to create geo restriction: %w", err)
	}

	slog.Info("geo restriction created", "restriction_id", created.ID, "radius_meters", created.RadiusMeters)
	return mapGeoRestriction(created), nil
}

// UpdateGeoRestriction implements restriction.Service.
func (s *RestrictionServiceImpl) UpdateGeoRestriction(ctx context.Context, req restriction.UpdateGeoRestrictionRequest) (restriction.GeoRestrictionResponse, error) {
	if err := req.Validate(); err != nil {
		return restriction.GeoRestrictionResponse{}, err
	}

	updated, err := s.restrictionRepo.UpdateGeoRestriction(ctx, restriction.GeoRestriction{
		ID:           req.ID,
		Title:        req.Title,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		RadiusMeters: req.Radius(),
	})
	if err != nil {
		return restriction.GeoRestrictionResponse{}, fmt.Errorf("failed to update geo restriction: %w", err)
	}
	return mapGeoRestriction(updated), nil
}

// DeleteGeoRestriction implements restriction.Service.
func (s *RestrictionServiceImpl) DeleteGeoRestriction(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return restriction.ErrGeoRestrictionNotFound
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.deleteUnassigned(ctx, restriction.TypeGeo, id, s.restrictionRepo.DeleteGeoRestriction)
	})
	if err != nil {
		return err
	}
	slog.Info("geo restriction deleted", "restriction_id", id)
	return nil
}

// deleteUnassigned locks the restriction row, then deletes it only when no
// assignment points at it. Assign takes the same lock, so the two cannot
// interleave.
func (s *RestrictionServiceImpl) deleteUnassigned(ctx context.Context, t restriction.Type, id string, del func(ctx context.Context, id string) error) error {
	if err := s.restrictionRepo.LockRestriction(ctx, t, id); err != nil {
		return fmt.Errorf("failed to lock restriction: %w", err)
	}

	count, err := s.restrictionRepo.CountAssignments(ctx, t, id)
	if err != nil {
		return fmt.Errorf("failed to count assignments: %w", err)
	}
	if count > 0 {
		return restriction.ErrRestrictionInUse
	}

	if err := del(ctx, id); err != nil {
		return fmt.Errorf("failed to delete restriction: %w", err)
	}
	return nil
}

// Assign implements restriction.Service.
func (s *RestrictionServiceImpl) Assign(ctx context.Context, req restriction.AssignRestrictionRequest) (restriction.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return restriction.AssignmentResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return restriction.AssignmentResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive() {
		return restriction.AssignmentResponse{}, employee.ErrEmployeeInactive
	}

	var (
		title   string
		created restriction.Assignment
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.restrictionRepo.LockRestriction(ctx, req.Type, req.RestrictionID); err != nil {
			return fmt.Errorf("failed to lock restriction: %w", err)
		}

		switch req.Type {
		case restriction.TypeIP:
			r, err := s.restrictionRepo.GetIPRestrictionByID(ctx, req.RestrictionID)
			if err != nil {
				return fmt.Errorf("failed to get IP restriction: %w", err)
			}
			title = r.Title
		case restriction.TypeGeo:
			r, err := s.restrictionRepo.GetGeoRestrictionByID(ctx, req.RestrictionID)
			if err != nil {
				return fmt.Errorf("failed to get geo restriction: %w", err)
			}
			title = r.Title
		}

		exists, err := s.restrictionRepo.ExistsAssignment(ctx, req.EmployeeID, req.Type, req.RestrictionID)
		if err != nil {
			return fmt.Errorf("failed to check assignment: %w", err)
		}
		if exists {
			return restriction.ErrAssignmentExists
		}

		created, err = s.restrictionRepo.CreateAssignment(ctx, restriction.Assignment{
			EmployeeID:    req.EmployeeID,
			Type:          req.Type,
			RestrictionID: req.RestrictionID,
		})
		if err != nil {
			if errors.Is(err, restriction.ErrAssignmentExists) {
				return err
			}
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return restriction.AssignmentResponse{}, err
	}
	created.EmployeeName = &emp.FullName
	created.RestrictionTitle = &title

	slog.Info("restriction assigned",
		"employee_id", req.EmployeeID,
		"restriction_type", req.Type,
		"restriction_id", req.RestrictionID)
	return mapAssignment(created), nil
}

// Unassign implements restriction.Service.
func (s *RestrictionServiceImpl) Unassign(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return restriction.ErrAssignmentNotFound
	}
	if err := s.restrictionRepo.DeleteAssignment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	slog.Info("restriction unassigned", "assignment_id", id)
	return nil
}

// ListAssignments implements restriction.Service.
func (s *RestrictionServiceImpl) ListAssignments(ctx context.Context, filter restriction.AssignmentFilter) ([]restriction.AssignmentResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	items, err := s.restrictionRepo.ListAssignments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	responses := make([]restriction.AssignmentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, mapAssignment(item))
	}
	return responses, nil
}

func mapIPRestriction(r restriction.IPRestriction) restriction.IPRestrictionResponse {
	allowed := r.AllowedIPs
	if allowed == nil {
		allowed = []string{}
	}
	return restriction.IPRestrictionResponse{
		ID:         r.ID,
		Title:      r.Title,
		AllowedIPs: allowed,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
}

func mapGeoRestriction(r restriction.GeoRestriction) restriction.GeoRestrictionResponse {
	return restriction.GeoRestrictionResponse{
		ID:           r.ID,
		Title:        r.Title,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		RadiusMeters: r.RadiusMeters,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
}

func mapAssignment(a restriction.Assignment) restriction.AssignmentResponse {
	return restriction.AssignmentResponse{
		ID:               a.ID,
		EmployeeID:       a.EmployeeID,
		EmployeeName:     a.EmployeeName,
		Type:             a.Type,
		RestrictionID:    a.RestrictionID,
		RestrictionTitle: a.RestrictionTitle,
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
	}
}
