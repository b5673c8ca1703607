package tenant

import (
	"gorm.io/gorm"

	"peopledesk/internal/model"
	"peopledesk/internal/softdelete"
)

// Collections is the handle set for one tenant database. Soft-deletable
// entities are exposed as soft-delete repositories; reference data
// (departments, designations, leave types, stats) is reached through DB().
type Collections struct {
	TenantID string

	Employees       *softdelete.Repository[model.Employee]
	Leaves          *softdelete.Repository[model.Leave]
	Tickets         *softdelete.Repository[model.Ticket]
	Projects        *softdelete.Repository[model.Project]
	Clients         *softdelete.Repository[model.Client]
	Holidays        *softdelete.Repository[model.Holiday]
	AssetCategories *softdelete.Repository[model.AssetCategory]

	db *gorm.DB
}

// DB returns the tenant database handle for entities without a typed
// repository and for caller-built queries.
func (c *Collections) DB() *gorm.DB {
	return c.db
}

func newCollections(tenantID string, db *gorm.DB) *Collections {
	cfg := softdelete.Config{}
	return &Collections{
		TenantID:        tenantID,
		Employees:       softdelete.NewRepository[model.Employee](db, cfg),
		Leaves:          softdelete.NewRepository[model.Leave](db, cfg),
		Tickets:         softdelete.NewRepository[model.Ticket](db, cfg),
		Projects:        softdelete.NewRepository[model.Project](db, cfg),
		Clients:         softdelete.NewRepository[model.Client](db, cfg),
		Holidays:        softdelete.NewRepository[model.Holiday](db, cfg),
		AssetCategories: softdelete.NewRepository[model.AssetCategory](db, cfg),
		db:              db,
	}
}

// Models lists every entity type materialized in a tenant database, in
// migration order.
func Models() []any {
	return []any{
		&model.Employee{},
		&model.Department{},
		&model.Designation{},
		&model.Leave{},
		&model.LeaveType{},
		&model.Ticket{},
		&model.Project{},
		&model.Client{},
		&model.Holiday{},
		&model.AssetCategory{},
		&model.TenantStats{},
	}
}
