package tenant

import (
	"context"
	"fmt"

	"peopledesk/internal/model"
)

// Default reference data seeded into brand-new tenant databases.
var (
	defaultDepartments = []string{
		"Human Resources",
		"Engineering",
		"Sales",
		"Marketing",
		"Finance",
	}

	defaultLeaveTypes = []model.LeaveType{
		{Name: "Sick Leave", Days: 10},
		{Name: "Casual Leave", Days: 12},
		{Name: "Paid Leave", Days: 15},
		{Name: "Maternity Leave", Days: 90},
		{Name: "Paternity Leave", Days: 7},
	}

	defaultAssetCategories = []string{
		"Office Furniture",
		"Electronics",
		"Computers & Laptops",
		"Mobile Devices",
		"Vehicles",
	}
)

// Bootstrap seeds a freshly created tenant database with default departments,
// leave types, asset categories and the stats row. Safe to call more than
// once: each seed group is skipped when the table already has rows.
func Bootstrap(ctx context.Context, cols *Collections) error {
	db := cols.DB().WithContext(ctx)

	var n int64
	if err := db.Model(&model.Department{}).Count(&n).Error; err != nil {
		return fmt.Errorf("bootstrap tenant %s: %w", cols.TenantID, err)
	}
	if n == 0 {
		departments := make([]model.Department, 0, len(defaultDepartments))
		for _, name := range defaultDepartments {
			departments = append(departments, model.Department{Department: name, Status: "active"})
		}
		if err := db.Create(&departments).Error; err != nil {
			return fmt.Errorf("bootstrap tenant %s departments: %w", cols.TenantID, err)
		}
	}

	if err := db.Model(&model.LeaveType{}).Count(&n).Error; err != nil {
		return fmt.Errorf("bootstrap tenant %s: %w", cols.TenantID, err)
	}
	if n == 0 {
		leaveTypes := make([]model.LeaveType, len(defaultLeaveTypes))
		copy(leaveTypes, defaultLeaveTypes)
		if err := db.Create(&leaveTypes).Error; err != nil {
			return fmt.Errorf("bootstrap tenant %s leave types: %w", cols.TenantID, err)
		}
	}

	if err := db.Model(&model.AssetCategory{}).Count(&n).Error; err != nil {
		return fmt.Errorf("bootstrap tenant %s: %w", cols.TenantID, err)
	}
	if n == 0 {
		categories := make([]model.AssetCategory, 0, len(defaultAssetCategories))
		for _, name := range defaultAssetCategories {
			categories = append(categories, model.AssetCategory{Name: name, Status: "active"})
		}
		if err := db.Create(&categories).Error; err != nil {
			return fmt.Errorf("bootstrap tenant %s asset categories: %w", cols.TenantID, err)
		}
	}

	if err := db.Model(&model.TenantStats{}).Count(&n).Error; err != nil {
		return fmt.Errorf("bootstrap tenant %s: %w", cols.TenantID, err)
	}
	if n == 0 {
		if err := db.Create(&model.TenantStats{}).Error; err != nil {
			return fmt.Errorf("bootstrap tenant %s stats: %w", cols.TenantID, err)
		}
	}

	return nil
}
