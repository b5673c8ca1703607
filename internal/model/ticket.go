package model

import (
	"time"

	"peopledesk/internal/softdelete"
)

// Ticket represents a helpdesk ticket in a tenant database.
type Ticket struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Subject     string `json:"subject" gorm:"type:varchar(200)"`
	Description string `json:"description" gorm:"type:text"`
	Priority    string `json:"priority" gorm:"type:varchar(20);index;default:'Medium'"`
	Status      string `json:"status" gorm:"type:varchar(20);index;default:'Open'"`
	AssigneeID  *uint  `json:"assignee_id,omitempty" gorm:"index"`
	ReporterID  uint   `json:"reporter_id" gorm:"index"`

	softdelete.Fields

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
