package models

import "time"

// Property is one hotel. Every room, guest and booking belongs to exactly one.
type Property struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Address  string `gorm:"type:text" json:"address"`
	Phone    string `gorm:"size:50" json:"phone"`
	Email    string `gorm:"size:150" json:"email"`
	Timezone string `gorm:"size:64" json:"timezone"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
