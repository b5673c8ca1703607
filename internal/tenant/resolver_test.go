package tenant_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"peopledesk/internal/model"
	"peopledesk/internal/softdelete"
	"peopledesk/internal/tenant"
	"peopledesk/pkg/apperr"
)

// sqliteOpener maps each tenant id to its own named in-memory database.
// Shared cache keeps the storage alive while the resolver holds the handle,
// so repeated resolutions observe the same data.
func sqliteOpener(t *testing.T) tenant.OpenFunc {
	ns := strings.ReplaceAll(uuid.New().String(), "-", "")
	return func(tenantID string) (gorm.Dialector, error) {
		dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", ns, tenantID)
		return sqlite.Open(dsn), nil
	}
}

func newResolver(t *testing.T, maxEntries int) *tenant.Resolver {
	return tenant.NewResolver(tenant.Options{
		Open:       sqliteOpener(t),
		MaxEntries: maxEntries,
	})
}

func TestTenantIsolation(t *testing.T) {
	r := newResolver(t, 0)
	defer r.Close()
	ctx := context.Background()

	acme, err := r.Collections(ctx, "acme")
	require.NoError(t, err)
	globex, err := r.Collections(ctx, "globex")
	require.NoError(t, err)

	// Both tenants create a department with the same name
	require.NoError(t, acme.DB().Create(&model.Department{Department: "Engineering"}).Error)
	require.NoError(t, globex.DB().Create(&model.Department{Department: "Engineering"}).Error)

	var acmeDepts, globexDepts []model.Department
	require.NoError(t, acme.DB().Find(&acmeDepts).Error)
	require.NoError(t, globex.DB().Find(&globexDepts).Error)
	assert.Len(t, acmeDepts, 1)
	assert.Len(t, globexDepts, 1)

	// An employee inserted through one tenant's handles is invisible to the other
	emp := model.Employee{EmployeeCode: "E-1", FirstName: "Ada", Status: model.StatusActive}
	require.NoError(t, acme.Employees.Create(ctx, &emp))

	fromGlobex, err := globex.Employees.FindActive(ctx, softdelete.Filter{})
	require.NoError(t, err)
	assert.Empty(t, fromGlobex)
}

func TestRepeatedResolutionSameStorage(t *testing.T) {
	r := newResolver(t, 0)
	defer r.Close()
	ctx := context.Background()

	first, err := r.Collections(ctx, "acme")
	require.NoError(t, err)
	require.NoError(t, first.DB().Create(&model.Department{Department: "Sales"}).Error)

	second, err := r.Collections(ctx, "acme")
	require.NoError(t, err)

	var depts []model.Department
	require.NoError(t, second.DB().Find(&depts).Error)
	assert.Len(t, depts, 1)
}

func TestNotConnected(t *testing.T) {
	r := tenant.NewResolver(tenant.Options{})

	_, err := r.Collections(context.Background(), "acme")
	assert.ErrorIs(t, err, apperr.ErrNotConnected)
}

func TestMalformedTenantID(t *testing.T) {
	r := newResolver(t, 0)
	defer r.Close()
	ctx := context.Background()

	for _, id := range []string{"", "bad id", "semi;colon", strings.Repeat("a", 65)} {
		_, err := r.Collections(ctx, id)
		assert.ErrorIs(t, err, apperr.ErrValidation, "id %q", id)
	}
}

func TestValidID(t *testing.T) {
	assert.True(t, tenant.ValidID("acme"))
	assert.True(t, tenant.ValidID("64f1a2b3-c4d5"))
	assert.True(t, tenant.ValidID("tenant_42"))
	assert.False(t, tenant.ValidID(""))
	assert.False(t, tenant.ValidID("drop table"))
}

func TestLRUEviction(t *testing.T) {
	r := newResolver(t, 2)
	defer r.Close()
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		_, err := r.Collections(ctx, id)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, r.Len())

	// The evicted tenant can still be re-resolved
	_, err := r.Collections(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestConcurrentResolution(t *testing.T) {
	r := newResolver(t, 0)
	defer r.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*tenant.Collections, 10)
	errs := make([]error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Collections(ctx, "acme")
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		require.NoError(t, errs[i])
		// Memoization is idempotent: everyone gets the same handle set
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, 1, r.Len())
}
