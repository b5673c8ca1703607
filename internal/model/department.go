package model

import "time"

// Department represents a department in a tenant database. Departments are
// hard-deleted; they do not carry soft-delete fields.
type Department struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Department string    `json:"department" gorm:"type:varchar(100);uniqueIndex"`
	Status     string    `json:"status" gorm:"type:varchar(20);default:'active'"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Designation represents a job title within a department.
type Designation struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Designation string    `json:"designation" gorm:"type:varchar(100);uniqueIndex"`
	Department  string    `json:"department" gorm:"type:varchar(100);index"`
	Status      string    `json:"status" gorm:"type:varchar(20);default:'active'"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
