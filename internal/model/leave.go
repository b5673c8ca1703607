package model

import (
	"time"

	"peopledesk/internal/softdelete"
)

// Leave represents a leave request in a tenant database.
type Leave struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	EmployeeID uint      `json:"employee_id" gorm:"index;not null"`
	LeaveType  string    `json:"leave_type" gorm:"type:varchar(50);index"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Days       float64   `json:"days"`
	Reason     string    `json:"reason" gorm:"type:text"`
	Status     string    `json:"status" gorm:"type:varchar(20);index;default:'Pending'"`

	softdelete.Fields

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeaveType represents an allowance category such as sick or casual leave.
// Leave types are reference data and are not soft-deletable.
type LeaveType struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Days      int       `json:"days"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
