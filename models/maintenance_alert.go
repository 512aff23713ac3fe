package models

import "time"

const (
	AlertStatusOpen       = "open"
	AlertStatusInProgress = "in_progress"
	AlertStatusResolved   = "resolved"
)

type MaintenanceAlert struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	PropertyID uint       `gorm:"index;column:property_id;not null" json:"propertyId"`
	RoomID     uint       `gorm:"index;column:room_id;not null" json:"roomId"`
	Issue      string     `gorm:"type:text;not null" json:"issue"`
	ReportedBy string     `gorm:"size:150" json:"reportedBy"`
	Status     string     `gorm:"size:32;not null;default:open;index" json:"status"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
}
