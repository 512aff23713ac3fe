package models

import "time"

// Room statuses track housekeeping only. Occupancy is derived from bookings.
const (
	RoomStatusReady       = "ready"
	RoomStatusCleaning    = "cleaning"
	RoomStatusMaintenance = "maintenance"
)

var RoomStatuses = []string{RoomStatusReady, RoomStatusCleaning, RoomStatusMaintenance}

func IsRoomStatus(s string) bool {
	for _, v := range RoomStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Room struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PropertyID uint   `gorm:"column:property_id;not null;uniqueIndex:idx_room_property_number" json:"propertyId"`
	RoomNumber string `gorm:"column:room_number;type:varchar(50);not null;uniqueIndex:idx_room_property_number" json:"roomNumber"`

	Type        string  `gorm:"size:100;index" json:"type"`
	Floor       int     `json:"floor"`
	Price       float64 `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Status      string  `gorm:"size:32;not null;default:ready;index" json:"status"`
	Description string  `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
