package models

import "time"

const (
	BookingStatusConfirmed  = "confirmed"
	BookingStatusCheckedIn  = "checked_in"
	BookingStatusCheckedOut = "checked_out"
	BookingStatusCancelled  = "cancelled"
)

var BookingStatuses = []string{
	BookingStatusConfirmed,
	BookingStatusCheckedIn,
	BookingStatusCheckedOut,
	BookingStatusCancelled,
}

// OccupyingStatuses are the statuses that hold a room for their date range.
var OccupyingStatuses = []string{BookingStatusConfirmed, BookingStatusCheckedIn}

func IsBookingStatus(s string) bool {
	for _, v := range BookingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func IsOccupying(status string) bool {
	return status == BookingStatusConfirmed || status == BookingStatusCheckedIn
}

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PropertyID    uint   `gorm:"column:property_id;not null;index" json:"propertyId"`
	GuestID       uint   `gorm:"column:guest_id;not null;index" json:"guestId"`
	ReferenceCode string `gorm:"column:reference_code;size:64;uniqueIndex" json:"referenceCode"`

	// Both instants are pinned to noon in the property's timezone.
	CheckIn  time.Time `gorm:"column:check_in;not null;index" json:"checkIn"`
	CheckOut time.Time `gorm:"column:check_out;not null;index" json:"checkOut"`
	Nights   int       `gorm:"column:nights" json:"nights"`

	Status     string  `gorm:"column:status;size:32;not null;index" json:"status"`
	TotalPrice float64 `gorm:"column:total_price;type:decimal(12,2);not null;default:0" json:"totalPrice"`
	Notes      string  `gorm:"type:text" json:"notes,omitempty"`

	PaymentConfirmed bool   `gorm:"column:payment_confirmed;default:false" json:"paymentConfirmed"`
	PaymentStatus    string `gorm:"column:payment_status;size:64" json:"paymentStatus,omitempty"`
	PaymentMethod    string `gorm:"column:payment_method;size:64" json:"paymentMethod,omitempty"`

	CheckedInAt  *time.Time `gorm:"column:checked_in_at" json:"checkedInAt,omitempty"`
	CheckedOutAt *time.Time `gorm:"column:checked_out_at" json:"checkedOutAt,omitempty"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Guest Guest        `gorm:"foreignKey:GuestID;references:ID" json:"guest"`
	Rooms []BookedRoom `gorm:"foreignKey:BookingID" json:"rooms"`
}

// RoomIDs returns the distinct room ids of the booking's line items.
func (b *Booking) RoomIDs() []uint {
	seen := make(map[uint]struct{}, len(b.Rooms))
	ids := make([]uint, 0, len(b.Rooms))
	for _, br := range b.Rooms {
		if _, ok := seen[br.RoomID]; ok {
			continue
		}
		seen[br.RoomID] = struct{}{}
		ids = append(ids, br.RoomID)
	}
	return ids
}
