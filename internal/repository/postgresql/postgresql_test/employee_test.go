package postgresql_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeRepository_GetByID(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(db)

	id := createTestEmployee(t, "Bayu", "resigned")

	emp, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Bayu", emp.FullName)
	assert.False(t, emp.IsActive())

	_, err = repo.GetByID(ctx, "00000000-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = repo.GetByUserID(ctx, "00000000-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
