package restriction

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
)

var errStore = errors.New("store unavailable")

type fakeRepo struct {
	ip          map[string]restriction.IPRestriction
	geo         map[string]restriction.GeoRestriction
	assignments []restriction.Assignment
	seq         int
	failLookup  bool
	calls       []string
}

type txMarker struct{}

// fakeTx marks the context so the repo can tell in-transaction calls apart.
type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(context.WithValue(ctx, txMarker{}, true))
}

func (f *fakeRepo) record(ctx context.Context, name string) {
	if inTx, _ := ctx.Value(txMarker{}).(bool); !inTx {
		name += " (no tx)"
	}
	f.calls = append(f.calls, name)
}

func (f *fakeRepo) LockRestriction(ctx context.Context, t restriction.Type, id string) error {
	f.record(ctx, "lock")
	switch t {
	case restriction.TypeIP:
		if _, ok := f.ip[id]; !ok {
			return restriction.ErrIPRestrictionNotFound
		}
	case restriction.TypeGeo:
		if _, ok := f.geo[id]; !ok {
			return restriction.ErrGeoRestrictionNotFound
		}
	}
	return nil
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		ip:  map[string]restriction.IPRestriction{},
		geo: map[string]restriction.GeoRestriction{},
	}
}

func (f *fakeRepo) nextID() string {
	f.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", f.seq)
}

func (f *fakeRepo) addIP(allowed ...string) string {
	id := f.nextID()
	f.ip[id] = restriction.IPRestriction{ID: id, Title: "office", AllowedIPs: allowed}
	return id
}

func (f *fakeRepo) addGeo(lat, lon float64, radius int) string {
	id := f.nextID()
	f.geo[id] = restriction.GeoRestriction{ID: id, Title: "zone", Latitude: lat, Longitude: lon, RadiusMeters: radius}
	return id
}

func (f *fakeRepo) assign(employeeID string, t restriction.Type, restrictionID string) {
	f.assignments = append(f.assignments, restriction.Assignment{
		ID: f.nextID(), EmployeeID: employeeID, Type: t, RestrictionID: restrictionID,
	})
}

func (f *fakeRepo) GetAssignmentsByEmployee(ctx context.Context, employeeID string) ([]restriction.Assignment, error) {
	if f.failLookup {
		return nil, errStore
	}
	var out []restriction.Assignment
	for _, a := range f.assignments {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetIPRestrictions(ctx context.Context, ids []string) ([]restriction.IPRestriction, error) {
	var out []restriction.IPRestriction
	for _, id := range ids {
		if r, ok := f.ip[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetGeoRestrictions(ctx context.Context, ids []string) ([]restriction.GeoRestriction, error) {
	var out []restriction.GeoRestriction
	for _, id := range ids {
		if r, ok := f.geo[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListIPRestrictions(ctx context.Context) ([]restriction.IPRestriction, error) {
	var out []restriction.IPRestriction
	for _, r := range f.ip {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepo) GetIPRestrictionByID(ctx context.Context, id string) (restriction.IPRestriction, error) {
	r, ok := f.ip[id]
	if !ok {
		return restriction.IPRestriction{}, restriction.ErrIPRestrictionNotFound
	}
	return r, nil
}

func (f *fakeRepo) CreateIPRestriction(ctx context.Context, r restriction.IPRestriction) (restriction.IPRestriction, error) {
	r.ID = f.nextID()
	f.ip[r.ID] = r
	return r, nil
}

func (f *fakeRepo) UpdateIPRestriction(ctx context.Context, r restriction.IPRestriction) (restriction.IPRestriction, error) {
	if _, ok := f.ip[r.ID]; !ok {
		return restriction.IPRestriction{}, restriction.ErrIPRestrictionNotFound
	}
	f.ip[r.ID] = r
	return r, nil
}

func (f *fakeRepo) DeleteIPRestriction(ctx context.Context, id string) error {
	f.record(ctx, "delete")
	if _, ok := f.ip[id]; !ok {
		return restriction.ErrIPRestrictionNotFound
	}
	delete(f.ip, id)
	return nil
}

func (f *fakeRepo) ListGeoRestrictions(ctx context.Context) ([]restriction.GeoRestriction, error) {
	var out []restriction.GeoRestriction
	for _, r := range f.geo {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepo) GetGeoRestrictionByID(ctx context.Context, id string) (restriction.GeoRestriction, error) {
	r, ok := f.geo[id]
	if !ok {
		return restriction.GeoRestriction{}, restriction.ErrGeoRestrictionNotFound
	}
	return r, nil
}

func (f *fakeRepo) CreateGeoRestriction(ctx context.Context, r restriction.GeoRestriction) (restriction.GeoRestriction, error) {
	r.ID = f.nextID()
	f.geo[r.ID] = r
	return r, nil
}

func (f *fakeRepo) UpdateGeoRestriction(ctx context.Context, r restriction.GeoRestriction) (restriction.GeoRestriction, error) {
	if _, ok := f.geo[r.ID]; !ok {
		return restriction.GeoRestriction{}, restriction.ErrGeoRestrictionNotFound
	}
	f.geo[r.ID] = r
	return r, nil
}

func (f *fakeRepo) DeleteGeoRestriction(ctx context.Context, id string) error {
	f.record(ctx, "delete")
	if _, ok := f.geo[id]; !ok {
		return restriction.ErrGeoRestrictionNotFound
	}
	delete(f.geo, id)
	return nil
}

func (f *fakeRepo) CountAssignments(ctx context.Context, t restriction.Type, restrictionID string) (int64, error) {
	f.record(ctx, "count")
	var n int64
	for _, a := range f.assignments {
		if a.Type == t && a.RestrictionID == restrictionID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ExistsAssignment(ctx context.Context, employeeID string, t restriction.Type, restrictionID string) (bool, error) {
	for _, a := range f.assignments {
		if a.EmployeeID == employeeID && a.Type == t && a.RestrictionID == restrictionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CreateAssignment(ctx context.Context, a restriction.Assignment) (restriction.Assignment, error) {
	f.record(ctx, "create")
	a.ID = f.nextID()
	f.assignments = append(f.assignments, a)
	return a, nil
}

func (f *fakeRepo) ListAssignments(ctx context.Context, filter restriction.AssignmentFilter) ([]restriction.Assignment, error) {
	var out []restriction.Assignment
	for _, a := range f.assignments {
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Type != nil && a.Type != *filter.Type {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepo) DeleteAssignment(ctx context.Context, id string) error {
	for i, a := range f.assignments {
		if a.ID == id {
			f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
			return nil
		}
	}
	return restriction.ErrAssignmentNotFound
}

type fakeEmployees map[string]employee.Employee

func (f fakeEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f fakeEmployees) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	for _, e := range f {
		if e.UserID != nil && *e.UserID == userID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}
