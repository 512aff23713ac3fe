package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin        = "admin"
	RoleFrontdesk    = "frontdesk"
	RoleHousekeeping = "housekeeping"
	RoleMaintenance  = "maintenance"
)

type Staff struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FullName   string         `gorm:"size:255" json:"fullName"`
	Username   string         `gorm:"uniqueIndex;size:150" json:"username"`
	Password   string         `gorm:"size:255" json:"-"` // bcrypt hash, never returned
	Role       string         `gorm:"size:32;not null" json:"role"`
	PropertyID *uint          `gorm:"column:property_id;index" json:"propertyId,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
