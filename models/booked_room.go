package models

// BookedRoom is a booking line item. Rate is the room price when the line
// was first booked and does not follow later price edits.
type BookedRoom struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	BookingID uint    `gorm:"index;column:booking_id;not null" json:"bookingId"`
	RoomID    uint    `gorm:"index;column:room_id;not null" json:"roomId"`
	Rate      float64 `gorm:"column:rate;type:decimal(10,2);not null" json:"rate"`
	Quantity  int     `gorm:"column:quantity;not null;default:1" json:"quantity"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
}
