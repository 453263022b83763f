package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type restrictionRepository struct {
	db *database.DB
}

func NewRestrictionRepository(db *database.DB) restriction.Repository {
	return &restrictionRepository{db: db}
}

// ========================================
// LOOKUP
// ========================================

// GetAssignmentsByEmployee implements restriction.Lookup.
func (r *restrictionRepository) GetAssignmentsByEmployee(ctx context.Context, employeeID string) ([]restriction.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, restriction_type, restriction_id, created_at, updated_at
		FROM employee_restrictions
		WHERE employee_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee restrictions: %w", err)
	}
	defer rows.Close()

	var out []restriction.Assignment
	for rows.Next() {
		var a restriction.Assignment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Type, &a.RestrictionID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee restriction: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetIPRestrictions implements restriction.Lookup. Unknown ids are skipped.
func (r *restrictionRepository) GetIPRestrictions(ctx context.Context, ids []string) ([]restriction.IPRestriction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, title, allowed_ips, created_at, updated_at
		FROM ip_restrictions
		WHERE id = ANY($1::uuid[])
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query ip restrictions: %w", err)
	}
	defer rows.Close()
	return collectIPRestrictions(rows)
}

// GetGeoRestrictions implements restriction.Lookup. Unknown ids are skipped.
func (r *restrictionRepository) GetGeoRestrictions(ctx context.Context, ids []string) ([]restriction.GeoRestriction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, title, latitude, longitude, radius_meters, created_at, updated_at
		FROM geo_restrictions
		WHERE id = ANY($1::uuid[])
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query geo restrictions: %w", err)
	}
	defer rows.Close()
	return collectGeoRestrictions(rows)
}

func collectIPRestrictions(rows pgx.Rows) ([]restriction.IPRestriction, error) {
	out := make([]restriction.IPRestriction, 0)
	for rows.Next() {
		var ip restriction.IPRestriction
		if err := rows.Scan(&ip.ID, &ip.Title, &ip.AllowedIPs, &ip.CreatedAt, &ip.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ip restriction: %w", err)
		}
		out = append(out, ip)
	}
	return out, rows.Err()
}

func collectGeoRestrictions(rows pgx.Rows) ([]restriction.GeoRestriction, error) {
	out := make([]restriction.GeoRestriction, 0)
	for rows.Next() {
		var g restriction.GeoRestriction
		if err := rows.Scan(&g.ID, &g.Title, &g.Latitude, &g.Longitude, &g.RadiusMeters, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan geo restriction: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ========================================
// IP RESTRICTIONS
// ========================================

func (r *restrictionRepository) ListIPRestrictions(ctx context.Context) ([]restriction.IPRestriction, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, title, allowed_ips, created_at, updated_at
		FROM ip_restrictions
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ip restrictions: %w", err)
	}
	defer rows.Close()
	return collectIPRestrictions(rows)
}

func (r *restrictionRepository) GetIPRestrictionByID(ctx context.Context, id string) (restriction.IPRestriction, error) {
	q := GetQuerier(ctx, r.db)

	var ip restriction.IPRestriction
	err := q.QueryRow(ctx, `
		SELECT id, title, allowed_ips, created_at, updated_at
		FROM ip_restrictions
		WHERE id = $1
	`, id).Scan(&ip.ID, &ip.Title, &ip.AllowedIPs, &ip.CreatedAt, &ip.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return restriction.IPRestriction{}, restriction.ErrIPRestrictionNotFound
		}
		return restriction.IPRestriction{}, fmt.Errorf("failed to get ip restriction: %w", err)
	}
	return ip, nil
}

func (r *restrictionRepository) CreateIPRestriction(ctx context.Context, ip restriction.IPRestriction) (restriction.IPRestriction, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO ip_restrictions (title, allowed_ips)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, ip.Title, ip.AllowedIPs).Scan(&ip.ID, &ip.CreatedAt, &ip.UpdatedAt)
	if err != nil {
		return restriction.IPRestriction{}, fmt.Errorf("failed to create ip restriction: %w", err)
	}
	return ip, nil
}

func (r *restrictionRepository) UpdateIPRestriction(ctx context.Context, ip restriction.IPRestriction) (restriction.IPRestriction, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		UPDATE ip_restrictions
		SET title = $1, allowed_ips = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING created_at, updated_at
	`, ip.Title, ip.AllowedIPs, ip.ID).Scan(&ip.CreatedAt, &ip.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return restriction.IPRestriction{}, restriction.ErrIPRestrictionNotFound
		}
		return restriction.IPRestriction{}, fmt.Errorf("failed to update ip restriction: %w", err)
	}
	return ip, nil
}

func (r *restrictionRepository) DeleteIPRestriction(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM ip_restrictions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ip restriction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return restriction.ErrIPRestrictionNotFound
	}
	return nil
}

// ========================================
// GEO RESTRICTIONS
// ========================================

func (r *restrictionRepository) ListGeoRestrictions(ctx context.Context) ([]restriction.GeoRestriction, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, title, latitude, longitude, radius_meters, created_at, updated_at
		FROM geo_restrictions
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list geo restrictions: %w", err)
	}
	defer rows.Close()
	return collectGeoRestrictions(rows)
}

func (r *restrictionRepository) GetGeoRestrictionByID(ctx context.Context, id string) (restriction.GeoRestriction, error) {
	q := GetQuerier(ctx, r.db)

	var g restriction.GeoRestriction
	err := q.QueryRow(ctx, `
		SELECT id, title, latitude, longitude, radius_meters, created_at, updated_at
		FROM geo_restrictions
		WHERE id = $1
	`, id).Scan(&g.ID, &g.Title, &g.Latitude, &g.Longitude, &g.RadiusMeters, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return restriction.GeoRestriction{}, restriction.ErrGeoRestrictionNotFound
		}
		return restriction.GeoRestriction{}, fmt.Errorf("failed to get geo restriction: %w", err)
	}
	return g, nil
}

func (r *restrictionRepository) CreateGeoRestriction(ctx context.Context, g restriction.GeoRestriction) (restriction.GeoRestriction, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO geo_restrictions (title, latitude, longitude, radius_meters)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, g.Title, g.Latitude, g.Longitude, g.RadiusMeters).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return restriction.GeoRestriction{}, fmt.Errorf("failed to create geo restriction: %w", err)
	}
	return g, nil
}

func (r *restrictionRepository) UpdateGeoRestriction(ctx context.Context, g restriction.GeoRestriction) (restriction.GeoRestriction, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		UPDATE geo_restrictions
		SET title = $1, latitude = $2, longitude = $3, radius_meters = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING created_at, updated_at
	`, g.Title, g.Latitude, g.Longitude, g.RadiusMeters, g.ID).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return restriction.GeoRestriction{}, restriction.ErrGeoRestrictionNotFound
		}
		return restriction.GeoRestriction{}, fmt.Errorf("failed to update geo restriction: %w", err)
	}
	return g, nil
}

func (r *restrictionRepository) DeleteGeoRestriction(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM geo_restrictions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete geo restriction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return restriction.ErrGeoRestrictionNotFound
	}
	return nil
}

// ========================================
// ASSIGNMENTS
// ========================================

// LockRestriction implements restriction.Repository.
func (r *restrictionRepository) LockRestriction(ctx context.Context, t restriction.Type, id string) error {
	q := GetQuerier(ctx, r.db)

	table, notFound := "ip_restrictions", restriction.ErrIPRestrictionNotFound
	if t == restriction.TypeGeo {
		table, notFound = "geo_restrictions", restriction.ErrGeoRestrictionNotFound
	}

	var locked string
	err := q.QueryRow(ctx, `SELECT id FROM `+table+` WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound
		}
		return fmt.Errorf("failed to lock %s: %w", table, err)
	}
	return nil
}

func (r *restrictionRepository) CountAssignments(ctx context.Context, t restriction.Type, restrictionID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM employee_restrictions
		WHERE restriction_type = $1 AND restriction_id = $2
	`, t, restrictionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count restriction assignments: %w", err)
	}
	return count, nil
}

func (r *restrictionRepository) ExistsAssignment(ctx context.Context, employeeID string, t restriction.Type, restrictionID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM employee_restrictions
			WHERE employee_id = $1 AND restriction_type = $2 AND restriction_id = $3
		)
	`, employeeID, t, restrictionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check restriction assignment: %w", err)
	}
	return exists, nil
}

func (r *restrictionRepository) CreateAssignment(ctx context.Context, a restriction.Assignment) (restriction.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO employee_restrictions (employee_id, restriction_type, restriction_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, a.EmployeeID, a.Type, a.RestrictionID).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return restriction.Assignment{}, restriction.ErrAssignmentExists
		}
		return restriction.Assignment{}, fmt.Errorf("failed to create restriction assignment: %w", err)
	}
	return a, nil
}

// ListAssignments implements restriction.Repository. The title comes from
// whichever restriction table the type points at.
func (r *restrictionRepository) ListAssignments(ctx context.Context, filter restriction.AssignmentFilter) ([]restriction.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("er.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("er.restriction_type = $%d", argIdx))
		args = append(args, *filter.Type)
	}

	query := `
		SELECT er.id, er.employee_id, er.restriction_type, er.restriction_id, er.created_at, er.updated_at,
			e.full_name,
			COALESCE(ip.title, geo.title)
		FROM employee_restrictions er
		LEFT JOIN employees e ON e.id = er.employee_id
		LEFT JOIN ip_restrictions ip ON er.restriction_type = 'IP' AND ip.id = er.restriction_id
		LEFT JOIN geo_restrictions geo ON er.restriction_type = 'GEO' AND geo.id = er.restriction_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY er.created_at DESC, er.id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list restriction assignments: %w", err)
	}
	defer rows.Close()

	out := make([]restriction.Assignment, 0)
	for rows.Next() {
		var a restriction.Assignment
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.Type, &a.RestrictionID, &a.CreatedAt, &a.UpdatedAt,
			&a.EmployeeName, &a.RestrictionTitle,
		); err != nil {
			return nil, fmt.Errorf("failed to scan restriction assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *restrictionRepository) DeleteAssignment(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employee_restrictions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete restriction assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return restriction.ErrAssignmentNotFound
	}
	return nil
}
