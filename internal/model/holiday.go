package model

import (
	"time"

	"peopledesk/internal/softdelete"
)

// Holiday represents a company holiday in a tenant database.
type Holiday struct {
	ID    uint      `json:"id" gorm:"primaryKey"`
	Name  string    `json:"name" gorm:"type:varchar(100)"`
	Date  time.Time `json:"date" gorm:"index"`
	Notes string    `json:"notes" gorm:"type:text"`

	softdelete.Fields

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssetCategory represents an asset grouping such as laptops or furniture.
type AssetCategory struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Status string `json:"status" gorm:"type:varchar(20);default:'active'"`

	softdelete.Fields

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TenantStats is a single-row collection of aggregate counters kept inside
// each tenant database, seeded at bootstrap time.
type TenantStats struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	TotalEmployees  int       `json:"total_employees" gorm:"not null;default:0"`
	ActiveEmployees int       `json:"active_employees" gorm:"not null;default:0"`
	TotalProjects   int       `json:"total_projects" gorm:"not null;default:0"`
	TotalClients    int       `json:"total_clients" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
