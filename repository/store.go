package repository

import (
	"context"
	"errors"
	"time"

	"hotel-ops/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type RoomFilter struct {
	Type   string
	Floor  *int
	Search string // substring of room number or type
	Status string
}

type BookingFilter struct {
	Status string
	// From/To select bookings whose stay intersects [From, To).
	From *time.Time
	To   *time.Time
}

// Store is the transactional persistence surface of the booking engine.
// Methods called on the Store handed to Transaction's callback run inside
// that transaction.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	ListProperties(ctx context.Context) ([]models.Property, error)
	GetProperty(ctx context.Context, id uint) (*models.Property, error)
	CreateProperty(ctx context.Context, p *models.Property) error
	SaveProperty(ctx context.Context, p *models.Property) error

	GetRoom(ctx context.Context, id uint) (*models.Room, error)
	ListRooms(ctx context.Context, propertyID uint, f RoomFilter) ([]models.Room, error)
	// LockRooms loads the rooms with a write lock held until the
	// surrounding transaction ends. Missing ids are silently absent.
	LockRooms(ctx context.Context, ids []uint) ([]models.Room, error)
	CreateRoom(ctx context.Context, r *models.Room) error
	SaveRoom(ctx context.Context, r *models.Room) error
	SetRoomStatus(ctx context.Context, ids []uint, status string) error

	GetGuest(ctx context.Context, id uint) (*models.Guest, error)
	FindGuestByEmail(ctx context.Context, propertyID uint, email string) (*models.Guest, error)
	ListGuests(ctx context.Context, propertyID uint, search string) ([]models.Guest, error)
	CreateGuest(ctx context.Context, g *models.Guest) error
	SaveGuest(ctx context.Context, g *models.Guest) error

	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListBookings(ctx context.Context, propertyID uint, f BookingFilter) ([]models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	// SaveBooking updates the booking row and replaces its line items.
	SaveBooking(ctx context.Context, b *models.Booking) error
	DeleteBooking(ctx context.Context, id uint) error

	// OverlappingBookings returns occupying bookings holding roomID with
	// check_in < end and check_out > start, excluding excludeBookingID.
	OverlappingBookings(ctx context.Context, roomID uint, start, end time.Time, excludeBookingID uint) ([]models.Booking, error)
	OccupiedRoomIDs(ctx context.Context, propertyID uint, start, end time.Time) ([]uint, error)
	// TransitionBooking moves a booking from one status to another only if
	// it is still in from. It reports whether a row changed.
	TransitionBooking(ctx context.Context, id uint, from, to string, at time.Time) (bool, error)
	DueForCheckIn(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Booking, error)
	DueForCheckOut(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Booking, error)

	RecordBookingEvent(ctx context.Context, e *models.BookingEvent) error
	ListBookingEvents(ctx context.Context, bookingID uint) ([]models.BookingEvent, error)

	GetAlert(ctx context.Context, id uint) (*models.MaintenanceAlert, error)
	ListAlerts(ctx context.Context, propertyID uint, status string) ([]models.MaintenanceAlert, error)
	CreateAlert(ctx context.Context, a *models.MaintenanceAlert) error
	SaveAlert(ctx context.Context, a *models.MaintenanceAlert) error
	CountUnresolvedAlerts(ctx context.Context, roomID uint) (int64, error)

	FindStaffByUsername(ctx context.Context, username string) (*models.Staff, error)
	CreateStaff(ctx context.Context, s *models.Staff) error
}
