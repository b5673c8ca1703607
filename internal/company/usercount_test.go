package company_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"peopledesk/internal/company"
	"peopledesk/internal/model"
	"peopledesk/internal/softdelete"
	"peopledesk/internal/tenant"
	"peopledesk/pkg/apperr"
)

type fixture struct {
	central *gorm.DB
	tenants *tenant.Resolver
	counts  *company.CountService
}

func setup(t *testing.T) *fixture {
	central, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, central.AutoMigrate(&model.Company{}))

	ns := strings.ReplaceAll(uuid.New().String(), "-", "")
	tenants := tenant.NewResolver(tenant.Options{
		Open: func(tenantID string) (gorm.Dialector, error) {
			dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", ns, tenantID)
			return sqlite.Open(dsn), nil
		},
	})
	t.Cleanup(tenants.Close)

	return &fixture{
		central: central,
		tenants: tenants,
		counts:  company.NewCountService(central, tenants, nil),
	}
}

func (f *fixture) createCompany(t *testing.T, id string) {
	require.NoError(t, f.central.Create(&model.Company{ID: id, Name: "Company " + id, Active: true}).Error)
}

func (f *fixture) storedCount(t *testing.T, id string) int {
	var c model.Company
	require.NoError(t, f.central.Where("id = ?", id).First(&c).Error)
	return c.UserCount
}

func TestIncrementAndDecrementFloor(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.createCompany(t, "acme")

	count, err := f.counts.Increment(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = f.counts.Decrement(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// A second decrement must clamp at zero, never go negative
	count, err = f.counts.Decrement(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, f.storedCount(t, "acme"))
}

func TestIncrementStampsTimestamp(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.createCompany(t, "acme")

	_, err := f.counts.Increment(ctx, "acme")
	require.NoError(t, err)

	var c model.Company
	require.NoError(t, f.central.Where("id = ?", "acme").First(&c).Error)
	assert.NotNil(t, c.UserCountLastUpdated)
}

func TestIncrementUnknownCompany(t *testing.T) {
	f := setup(t)

	_, err := f.counts.Increment(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.counts.Decrement(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSyncConvergence(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.createCompany(t, "acme")

	// Poison the cached value; sync must overwrite it unconditionally
	require.NoError(t, f.central.Model(&model.Company{}).
		Where("id = ?", "acme").Update("user_count", 99).Error)

	cols, err := f.tenants.Collections(ctx, "acme")
	require.NoError(t, err)

	// 5 active employees
	for i := 0; i < 5; i++ {
		emp := model.Employee{
			EmployeeCode: fmt.Sprintf("E-%d", i),
			FirstName:    "Emp",
			Status:       model.StatusActive,
		}
		require.NoError(t, cols.Employees.Create(ctx, &emp))
	}
	// 1 inactive employee and 2 soft-deleted ones; none of them count
	inactive := model.Employee{EmployeeCode: "E-inactive", FirstName: "Emp", Status: model.StatusInactive}
	require.NoError(t, cols.Employees.Create(ctx, &inactive))
	for i := 0; i < 2; i++ {
		emp := model.Employee{
			EmployeeCode: fmt.Sprintf("E-del-%d", i),
			FirstName:    "Emp",
			Status:       model.StatusActive,
		}
		require.NoError(t, cols.Employees.Create(ctx, &emp))
		_, err := cols.Employees.SoftDelete(ctx, "hr-1", softdelete.Filter{"id": emp.ID})
		require.NoError(t, err)
	}

	count, err := f.counts.Sync(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, 5, f.storedCount(t, "acme"))
}

func TestSyncUnknownCompany(t *testing.T) {
	f := setup(t)

	// The tenant database resolves (lazy creation) but no central record matches
	_, err := f.counts.Sync(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSyncAllContinuesOnError(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.createCompany(t, "good-1")
	f.createCompany(t, "good-2")
	// Malformed id: resolution fails validation, the others still sync
	f.createCompany(t, "bad id")

	report, err := f.counts.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 1, report.Failed)
}
