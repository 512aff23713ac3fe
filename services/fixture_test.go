package services

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"hotel-ops/events"
	"hotel-ops/models"
	"hotel-ops/repository"
)

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *repository.MemoryStore
	svc    *BookingService
	events *events.Recorder
	now    time.Time
	prop   models.Property
	rooms  map[string]models.Room
}

// newFixture builds a UTC property with rooms 101 (Standard, 100), 102
// (Deluxe, 150) and 201 (Standard, 100, floor 2). The clock starts at
// 2025-11-01 09:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  repository.NewMemoryStore(),
		events: &events.Recorder{},
		now:    time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC),
		rooms:  map[string]models.Room{},
	}
	f.svc = NewBookingService(f.store, f.events)
	f.svc.DefaultLocation = time.UTC
	f.svc.Now = func() time.Time { return f.now }

	f.prop = models.Property{Name: "Test Hotel", Timezone: "UTC"}
	require.NoError(t, f.store.CreateProperty(f.ctx, &f.prop))

	f.addRoom("101", "Standard", 1, 100)
	f.addRoom("102", "Deluxe", 1, 150)
	f.addRoom("201", "Standard", 2, 100)
	return f
}

func (f *fixture) addRoom(number, typ string, floor int, price float64) models.Room {
	f.t.Helper()
	r := models.Room{
		PropertyID: f.prop.ID,
		RoomNumber: number,
		Type:       typ,
		Floor:      floor,
		Price:      price,
		Status:     models.RoomStatusReady,
	}
	require.NoError(f.t, f.store.CreateRoom(f.ctx, &r))
	f.rooms[number] = r
	return r
}

func (f *fixture) roomID(number string) uint {
	r, ok := f.rooms[number]
	require.True(f.t, ok, "unknown room %s", number)
	return r.ID
}

func (f *fixture) input(checkIn, checkOut string, rooms ...string) CreateBookingInput {
	in := CreateBookingInput{
		Guest:    GuestInput{Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0101"},
		CheckIn:  checkIn,
		CheckOut: checkOut,
	}
	for _, n := range rooms {
		in.Rooms = append(in.Rooms, RoomRequest{RoomID: f.roomID(n), Quantity: 1})
	}
	return in
}

func (f *fixture) book(checkIn, checkOut string, rooms ...string) *models.Booking {
	f.t.Helper()
	b, err := f.svc.CreateBooking(f.ctx, f.prop.ID, f.input(checkIn, checkOut, rooms...))
	require.NoError(f.t, err)
	return b
}

func (f *fixture) booking(id uint) *models.Booking {
	f.t.Helper()
	b, err := f.store.GetBooking(f.ctx, id)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) room(number string) *models.Room {
	f.t.Helper()
	r, err := f.store.GetRoom(f.ctx, f.roomID(number))
	require.NoError(f.t, err)
	return r
}

func noon(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, CheckInHour, 0, 0, 0, time.UTC)
}

// failingStore makes TransitionBooking fail for one booking id, inside and
// outside transactions.
type failingStore struct {
	repository.Store
	failID uint
}

func (s *failingStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(&failingStore{Store: tx, failID: s.failID})
	})
}

func (s *failingStore) TransitionBooking(ctx context.Context, id uint, from, to string, at time.Time) (bool, error) {
	if id == s.failID {
		return false, errors.New("simulated write failure")
	}
	return s.Store.TransitionBooking(ctx, id, from, to, at)
}

// staleStore serves a fixed check-in batch, the way a sweep that loaded its
// batch before another writer committed would see it.
type staleStore struct {
	repository.Store
	checkIns []models.Booking
}

func (s *staleStore) DueForCheckIn(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range s.checkIns {
		if b.ID > afterID {
			out = append(out, b)
		}
	}
	return out, nil
}
