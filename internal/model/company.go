package model

import (
	"time"

	"gorm.io/gorm"
)

// Company represents a customer account in the central database. Every company
// owns one isolated tenant database; the company ID doubles as the tenant ID.
type Company struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name   string `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Domain string `json:"domain" gorm:"type:varchar(100);index"`
	Plan   string `json:"plan" gorm:"type:varchar(50);default:'free'"`
	Active bool   `json:"active" gorm:"default:true"`

	// UserCount caches the number of active employees in the tenant database.
	// Maintained incrementally on employee lifecycle changes and reconciled by
	// the user-count sync path; treat as eventually consistent.
	UserCount            int        `json:"user_count" gorm:"not null;default:0"`
	UserCountLastUpdated *time.Time `json:"user_count_last_updated,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
