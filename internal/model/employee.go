package model

import (
	"time"

	"peopledesk/internal/softdelete"
)

// Employee status values. The company user count tracks employees with
// StatusActive only.
const (
	StatusActive     = "Active"
	StatusInactive   = "Inactive"
	StatusOnLeave    = "OnLeave"
	StatusTerminated = "Terminated"
)

// Employee represents an employee record in a tenant database.
type Employee struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	EmployeeCode string     `json:"employee_code" gorm:"type:varchar(50);uniqueIndex"`
	FirstName    string     `json:"first_name" gorm:"type:varchar(100)"`
	LastName     string     `json:"last_name" gorm:"type:varchar(100)"`
	Email        string     `json:"email" gorm:"type:varchar(100);index"`
	Phone        string     `json:"phone" gorm:"type:varchar(30)"`
	Department   string     `json:"department" gorm:"type:varchar(100);index"`
	Designation  string     `json:"designation" gorm:"type:varchar(100)"`
	Status       string     `json:"status" gorm:"type:varchar(20);index;default:'Active'"`
	JoinedAt     *time.Time `json:"joined_at,omitempty"`

	softdelete.Fields

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
