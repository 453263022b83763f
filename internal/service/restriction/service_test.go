package restriction

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inactiveID = "22222222-2222-4222-8222-222222222222"

func newTestService() (*fakeRepo, restriction.Service) {
	repo := newFakeRepo()
	employees := fakeEmployees{
		empID:      {ID: empID, FullName: "Asha Rao", EmploymentStatus: employee.EmploymentStatusActive},
		inactiveID: {ID: inactiveID, FullName: "Ravi Kumar", EmploymentStatus: employee.EmploymentStatusResigned},
	}
	return repo, NewRestrictionService(&fakeTx{}, repo, employees)
}

func floatPtr(f float64) *float64 { return &f }

func TestCreateIPRestriction(t *testing.T) {
	_, svc := newTestService()
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		resp, err := svc.CreateIPRestriction(ctx, restriction.CreateIPRestrictionRequest{
			Title:      " HQ ",
			AllowedIPs: []string{"192.168.1.0/24", " 10.0.0.5", ""},
		})
		require.NoError(t, err)
		assert.Equal(t, "HQ", resp.Title)
		assert.Equal(t, []string{"192.168.1.0/24", "10.0.0.5"}, resp.AllowedIPs)
	})

	t.Run("invalid entries", func(t *testing.T) {
		_, err := svc.CreateIPRestriction(ctx, restriction.CreateIPRestrictionRequest{
			Title:      "HQ",
			AllowedIPs: []string{"192.168.1.0/33", "256.1.1.1"},
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap()["allowed_ips"], "192.168.1.0/33")
	})

	t.Run("empty list and title", func(t *testing.T) {
		_, err := svc.CreateIPRestriction(ctx, restriction.CreateIPRestrictionRequest{AllowedIPs: []string{"  "}})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		m := verrs.ToMap()
		assert.Contains(t, m, "title")
		assert.Contains(t, m, "allowed_ips")
	})
}

func TestCreateGeoRestriction_Validation(t *testing.T) {
	_, svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		req   restriction.CreateGeoRestrictionRequest
		field string
	}{
		{"zero radius", restriction.CreateGeoRestrictionRequest{Title: "z", Latitude: floatPtr(1), Longitude: floatPtr(1), RadiusMeters: floatPtr(0)}, "radius_meters"},
		{"fractional radius", restriction.CreateGeoRestrictionRequest{Title: "z", Latitude: floatPtr(1), Longitude: floatPtr(1), RadiusMeters: floatPtr(10.5)}, "radius_meters"},
		{"missing latitude", restriction.CreateGeoRestrictionRequest{Title: "z", Longitude: floatPtr(1), RadiusMeters: floatPtr(10)}, "latitude"},
		{"longitude out of range", restriction.CreateGeoRestrictionRequest{Title: "z", Latitude: floatPtr(1), Longitude: floatPtr(200), RadiusMeters: floatPtr(10)}, "longitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateGeoRestriction(ctx, tt.req)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.field)
		})
	}

	resp, err := svc.CreateGeoRestriction(ctx, restriction.CreateGeoRestrictionRequest{
		Title: "Office", Latitude: floatPtr(officeLat), Longitude: floatPtr(officeLon), RadiusMeters: floatPtr(500),
	})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.RadiusMeters)
}

func TestDeleteRestriction_BlockedWhileAssigned(t *testing.T) {
	repo, svc := newTestService()
	ctx := context.Background()
	ipID := repo.addIP("10.0.0.1")
	geoID := repo.addGeo(officeLat, officeLon, 500)
	repo.assign(empID, restriction.TypeIP, ipID)
	repo.assign(empID, restriction.TypeGeo, geoID)

	assert.ErrorIs(t, svc.DeleteIPRestriction(ctx, ipID), restriction.ErrRestrictionInUse)
	assert.ErrorIs(t, svc.DeleteGeoRestriction(ctx, geoID), restriction.ErrRestrictionInUse)

	repo.assignments = nil
	assert.NoError(t, svc.DeleteIPRestriction(ctx, ipID))
	assert.NoError(t, svc.DeleteGeoRestriction(ctx, geoID))
	assert.ErrorIs(t, svc.DeleteIPRestriction(ctx, ipID), restriction.ErrIPRestrictionNotFound)
}

// Deleting and assigning take the same row lock inside one transaction, so an
// assignment can never land between the usage count and the delete.
func TestDeleteRestriction_LocksBeforeCountInsideTx(t *testing.T) {
	repo, svc := newTestService()
	ctx := context.Background()
	ipID := repo.addIP("10.0.0.1")

	require.NoError(t, svc.DeleteIPRestriction(ctx, ipID))
	assert.Equal(t, []string{"lock", "count", "delete"}, repo.calls)

	repo.calls = nil
	geoID := repo.addGeo(officeLat, officeLon, 500)
	repo.assign(empID, restriction.TypeGeo, geoID)
	assert.ErrorIs(t, svc.DeleteGeoRestriction(ctx, geoID), restriction.ErrRestrictionInUse)
	assert.Equal(t, []string{"lock", "count"}, repo.calls)
	assert.Contains(t, repo.geo, geoID)
}

func TestAssign_LocksRestrictionInsideTx(t *testing.T) {
	repo, svc := newTestService()
	ctx := context.Background()
	ipID := repo.addIP("10.0.0.1")

	_, err := svc.Assign(ctx, restriction.AssignRestrictionRequest{EmployeeID: empID, Type: restriction.TypeIP, RestrictionID: ipID})
	require.NoError(t, err)
	assert.Equal(t, []string{"lock", "create"}, repo.calls)

	repo.assignments = nil
	require.NoError(t, svc.DeleteIPRestriction(ctx, ipID))
	repo.calls = nil
	_, err = svc.Assign(ctx, restriction.AssignRestrictionRequest{EmployeeID: inactiveID, Type: restriction.TypeIP, RestrictionID: ipID})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
	_, err = svc.Assign(ctx, restriction.AssignRestrictionRequest{EmployeeID: empID, Type: restriction.TypeIP, RestrictionID: ipID})
	assert.ErrorIs(t, err, restriction.ErrIPRestrictionNotFound)
	assert.NotContains(t, repo.calls, "create")
}

func TestDeleteRestriction_InvalidID(t *testing.T) {
	_, svc := newTestService()
	assert.ErrorIs(t, svc.DeleteIPRestriction(context.Background(), "abc"), restriction.ErrIPRestrictionNotFound)
	assert.ErrorIs(t, svc.DeleteGeoRestriction(context.Background(), "abc"), restriction.ErrGeoRestrictionNotFound)
}

func TestAssign(t *testing.T) {
	repo, svc := newTestService()
	ctx := context.Background()
	ipID := repo.addIP("10.0.0.1")

	resp, err := svc.Assign(ctx, restriction.AssignRestrictionRequest{EmployeeID: empID, Type: "ip", RestrictionID: ipID})
	require.NoError(t, err)
	assert.Equal(t, restriction.TypeIP, resp.Type)
	require.NotNil(t, resp.EmployeeName)
	assert.Equal(t, "Asha Rao", *resp.EmployeeName)

	_, err = svc.Assign(ctx, restriction.AssignRestrictionRequest{EmployeeID: empID, Type: restriction.TypeIP, RestrictionID: ipID})
	assert.ErrorIs(t, err, restriction.ErrAssignmentExists)

	_, err = svc.Assign(ctx, restriction.AssignRestrictionRequest{EmployeeID: inactiveID, Type: restriction.TypeIP, RestrictionID: ipID})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)

	_, err = svc.Assign(ctx, restriction.AssignRestrictionRequest{EmployeeID: "33333333-3333-4333-8333-333333333333", Type: restriction.TypeIP, RestrictionID: ipID})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = svc.Assign(ctx, restriction.AssignRestrictionRequest{EmployeeID: empID, Type: restriction.TypeGeo, RestrictionID: ipID})
	assert.ErrorIs(t, err, restriction.ErrGeoRestrictionNotFound)

	_, err = svc.Assign(ctx, restriction.AssignRestrictionRequest{EmployeeID: empID, Type: "WIFI", RestrictionID: ipID})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "restriction_type")
}

func TestUnassignAndList(t *testing.T) {
	repo, svc := newTestService()
	ctx := context.Background()
	resp, err := svc.Assign(ctx, restriction.AssignRestrictionRequest{EmployeeID: empID, Type: restriction.TypeIP, RestrictionID: repo.addIP("10.0.0.1")})
	require.NoError(t, err)

	list, err := svc.ListAssignments(ctx, restriction.AssignmentFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	geoType := restriction.TypeGeo
	list, err = svc.ListAssignments(ctx, restriction.AssignmentFilter{Type: &geoType})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.Unassign(ctx, resp.ID))
	assert.ErrorIs(t, svc.Unassign(ctx, resp.ID), restriction.ErrAssignmentNotFound)
}
