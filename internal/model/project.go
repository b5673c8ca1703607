package model

import (
	"time"

	"peopledesk/internal/softdelete"
)

// Project represents a project in a tenant database.
type Project struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"type:varchar(200);index"`
	Description string     `json:"description" gorm:"type:text"`
	ClientID    *uint      `json:"client_id,omitempty" gorm:"index"`
	LeadID      *uint      `json:"lead_id,omitempty" gorm:"index"`
	Status      string     `json:"status" gorm:"type:varchar(20);index;default:'Active'"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`

	softdelete.Fields

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Client represents a customer of the tenant company.
type Client struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"type:varchar(200);index"`
	Email   string `json:"email" gorm:"type:varchar(100)"`
	Phone   string `json:"phone" gorm:"type:varchar(30)"`
	Company string `json:"company" gorm:"type:varchar(200)"`
	Status  string `json:"status" gorm:"type:varchar(20);default:'Active'"`

	softdelete.Fields

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
