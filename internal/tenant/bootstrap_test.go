package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledesk/internal/model"
	"peopledesk/internal/tenant"
)

func TestBootstrapSeedsDefaults(t *testing.T) {
	r := newResolver(t, 0)
	defer r.Close()
	ctx := context.Background()

	cols, err := r.Collections(ctx, "fresh")
	require.NoError(t, err)
	require.NoError(t, tenant.Bootstrap(ctx, cols))

	var departments int64
	require.NoError(t, cols.DB().Model(&model.Department{}).Count(&departments).Error)
	assert.Equal(t, int64(5), departments)

	var leaveTypes []model.LeaveType
	require.NoError(t, cols.DB().Find(&leaveTypes).Error)
	require.Len(t, leaveTypes, 5)

	byName := make(map[string]int, len(leaveTypes))
	for _, lt := range leaveTypes {
		byName[lt.Name] = lt.Days
	}
	assert.Equal(t, 10, byName["Sick Leave"])
	assert.Equal(t, 90, byName["Maternity Leave"])

	var categories int64
	require.NoError(t, cols.DB().Model(&model.AssetCategory{}).Count(&categories).Error)
	assert.Equal(t, int64(5), categories)

	var stats int64
	require.NoError(t, cols.DB().Model(&model.TenantStats{}).Count(&stats).Error)
	assert.Equal(t, int64(1), stats)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	r := newResolver(t, 0)
	defer r.Close()
	ctx := context.Background()

	cols, err := r.Collections(ctx, "rerun")
	require.NoError(t, err)
	require.NoError(t, tenant.Bootstrap(ctx, cols))
	require.NoError(t, tenant.Bootstrap(ctx, cols))

	var departments int64
	require.NoError(t, cols.DB().Model(&model.Department{}).Count(&departments).Error)
	assert.Equal(t, int64(5), departments)
}
