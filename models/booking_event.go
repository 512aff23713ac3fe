package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventSourceCreate = "create"
	EventSourceManual = "manual"
	EventSourceSweep  = "sweep"
	EventSourceUpdate = "update"
)

// BookingEvent is the audit trail of a booking's status history.
type BookingEvent struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	BookingID  uint           `gorm:"index;column:booking_id;not null" json:"bookingId"`
	PropertyID uint           `gorm:"index;column:property_id" json:"propertyId"`
	FromStatus string         `gorm:"column:from_status;size:32" json:"fromStatus,omitempty"`
	ToStatus   string         `gorm:"column:to_status;size:32" json:"toStatus"`
	Source     string         `gorm:"size:32;index" json:"source"`
	Detail     datatypes.JSON `gorm:"column:detail" json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
