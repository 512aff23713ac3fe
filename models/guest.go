package models

import "time"

// Guest is unique per (property, email).
type Guest struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint   `gorm:"column:property_id;not null;uniqueIndex:idx_guest_property_email" json:"propertyId"`
	FullName   string `gorm:"size:255;not null" json:"fullName"`
	Email      string `gorm:"size:255;not null;uniqueIndex:idx_guest_property_email" json:"email"`
	Phone      string `gorm:"size:50" json:"phone"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
