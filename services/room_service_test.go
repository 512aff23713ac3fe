package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops/events"
	"hotel-ops/models"
	"hotel-ops/repository"
)

func TestRoomService_OccupancyIsDerived(t *testing.T) {
	f := newFixture(t)
	rooms := NewRoomService(f.svc)
	b := f.book("2025-11-02", "2025-11-04", "101")

	f.now = time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	list, err := rooms.List(f.ctx, f.prop.ID, repository.RoomFilter{})
	require.NoError(t, err)
	occupied := map[string]bool{}
	for _, v := range list {
		occupied[v.RoomNumber] = v.Occupied
	}
	assert.Equal(t, map[string]bool{"101": true, "102": false, "201": false}, occupied)

	view, err := rooms.Get(f.ctx, f.prop.ID, f.roomID("101"))
	require.NoError(t, err)
	assert.True(t, view.Occupied)
	require.NotNil(t, view.CurrentBookingID)
	assert.Equal(t, b.ID, *view.CurrentBookingID)
	// Status stays a housekeeping value.
	assert.Equal(t, models.RoomStatusReady, view.Status)

	// Checkout day at noon the room is free again.
	f.now = noon(2025, 11, 4)
	view, err = rooms.Get(f.ctx, f.prop.ID, f.roomID("101"))
	require.NoError(t, err)
	assert.False(t, view.Occupied)
	assert.Nil(t, view.CurrentBookingID)
}

func TestRoomService_SetStatus(t *testing.T) {
	f := newFixture(t)
	rooms := NewRoomService(f.svc)

	r, err := rooms.SetStatus(f.ctx, f.prop.ID, f.roomID("101"), models.RoomStatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusMaintenance, r.Status)
	assert.Equal(t, models.RoomStatusMaintenance, f.room("101").Status)
	assert.Len(t, f.events.OfType(events.TypeRoomStatusChanged), 1)

	// Same status: nothing happens.
	_, err = rooms.SetStatus(f.ctx, f.prop.ID, f.roomID("101"), models.RoomStatusMaintenance)
	require.NoError(t, err)
	assert.Len(t, f.events.OfType(events.TypeRoomStatusChanged), 1)

	// Any status may follow any other.
	r, err = rooms.SetStatus(f.ctx, f.prop.ID, f.roomID("101"), models.RoomStatusReady)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusReady, r.Status)

	_, err = rooms.SetStatus(f.ctx, f.prop.ID, f.roomID("101"), "occupied")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = rooms.SetStatus(f.ctx, f.prop.ID, 9999, models.RoomStatusReady)
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestRoomService_CreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	rooms := NewRoomService(f.svc)

	r, err := rooms.Create(f.ctx, f.prop.ID, RoomInput{RoomNumber: " 301 ", Type: "Suite", Floor: 3, Price: 250})
	require.NoError(t, err)
	assert.Equal(t, "301", r.RoomNumber)
	assert.Equal(t, models.RoomStatusReady, r.Status)

	_, err = rooms.Create(f.ctx, f.prop.ID, RoomInput{RoomNumber: "301", Price: 10})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "room_number", verr.Field)

	_, err = rooms.Create(f.ctx, f.prop.ID, RoomInput{RoomNumber: "302", Price: -1})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)

	updated, err := rooms.Update(f.ctx, f.prop.ID, r.ID, RoomInput{RoomNumber: "301", Type: "Suite", Floor: 3, Price: 275, Status: models.RoomStatusReady})
	require.NoError(t, err)
	assert.Equal(t, 275.0, updated.Price)
	assert.Equal(t, models.RoomStatusReady, updated.Status)

	_, err = rooms.Update(f.ctx, f.prop.ID, r.ID, RoomInput{RoomNumber: "301", Price: 275, Status: models.RoomStatusCleaning})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestRoomService_UpdateKeepsHousekeepingStatus(t *testing.T) {
	f := newFixture(t)
	rooms := NewRoomService(f.svc)
	b := f.book("2025-11-01", "2025-11-02", "101")
	_, err := f.svc.TransitionBookingStatus(f.ctx, f.prop.ID, b.ID, models.BookingStatusCheckedIn)
	require.NoError(t, err)
	_, err = f.svc.TransitionBookingStatus(f.ctx, f.prop.ID, b.ID, models.BookingStatusCheckedOut)
	require.NoError(t, err)
	require.Equal(t, models.RoomStatusCleaning, f.room("101").Status)

	updated, err := rooms.Update(f.ctx, f.prop.ID, f.roomID("101"), RoomInput{RoomNumber: "101", Type: "Standard", Floor: 1, Price: 120})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusCleaning, updated.Status)
	assert.Equal(t, 120.0, f.room("101").Price)
	assert.Equal(t, models.RoomStatusCleaning, f.room("101").Status)

	_, err = rooms.SetStatus(f.ctx, f.prop.ID, f.roomID("102"), models.RoomStatusMaintenance)
	require.NoError(t, err)
	_, err = rooms.Update(f.ctx, f.prop.ID, f.roomID("102"), RoomInput{RoomNumber: "102", Type: "Deluxe", Floor: 1, Price: 150, Description: "sea view"})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusMaintenance, f.room("102").Status)

	_, err = rooms.Update(f.ctx, f.prop.ID, 9999, RoomInput{RoomNumber: "999"})
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestRoomService_HousekeepingTasks(t *testing.T) {
	f := newFixture(t)
	rooms := NewRoomService(f.svc)
	require.NoError(t, f.store.SetRoomStatus(f.ctx, []uint{f.roomID("102")}, models.RoomStatusCleaning))
	require.NoError(t, f.store.SetRoomStatus(f.ctx, []uint{f.roomID("201")}, models.RoomStatusMaintenance))

	tasks, err := rooms.HousekeepingTasks(f.ctx, f.prop.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "102", tasks[0].RoomNumber)
	assert.Equal(t, "pending", tasks[0].Status)
	assert.Equal(t, "medium", tasks[0].Priority)

	assert.Equal(t, "201", tasks[1].RoomNumber)
	assert.Equal(t, "in_progress", tasks[1].Status)
	assert.Equal(t, "high", tasks[1].Priority)
}

func TestMaintenanceService_AlertsDriveRoomStatus(t *testing.T) {
	f := newFixture(t)
	maint := NewMaintenanceService(f.svc)
	roomID := f.roomID("101")

	first, err := maint.Open(f.ctx, f.prop.ID, AlertInput{RoomID: roomID, Issue: "leaking tap", ReportedBy: "housekeeping"})
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusOpen, first.Status)
	assert.Equal(t, models.RoomStatusMaintenance, f.room("101").Status)

	second, err := maint.Open(f.ctx, f.prop.ID, AlertInput{RoomID: roomID, Issue: "broken lamp"})
	require.NoError(t, err)

	_, err = maint.SetStatus(f.ctx, f.prop.ID, first.ID, models.AlertStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusMaintenance, f.room("101").Status, "one alert is still open")

	resolved, err := maint.SetStatus(f.ctx, f.prop.ID, second.ID, models.AlertStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, models.RoomStatusCleaning, f.room("101").Status)

	open, err := maint.List(f.ctx, f.prop.ID, models.AlertStatusOpen)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestMaintenanceService_Validation(t *testing.T) {
	f := newFixture(t)
	maint := NewMaintenanceService(f.svc)

	var verr *ValidationError
	_, err := maint.Open(f.ctx, f.prop.ID, AlertInput{RoomID: f.roomID("101")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "issue", verr.Field)

	_, err = maint.Open(f.ctx, f.prop.ID, AlertInput{RoomID: 9999, Issue: "x"})
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)

	_, err = maint.List(f.ctx, f.prop.ID, "closed")
	require.ErrorAs(t, err, &verr)
}

func TestGuestService_Update(t *testing.T) {
	f := newFixture(t)
	guests := NewGuestService(f.store)
	a := f.book("2025-11-10", "2025-11-12", "101")
	in := f.input("2025-11-10", "2025-11-12", "102")
	in.Guest = GuestInput{Name: "Bob", Email: "bob@example.com"}
	_, err := f.svc.CreateBooking(f.ctx, f.prop.ID, in)
	require.NoError(t, err)

	g, err := guests.Update(f.ctx, f.prop.ID, a.GuestID, GuestInput{Name: "Jane Smith", Email: "jane@example.com", Phone: "555-9999"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", g.FullName)
	assert.Equal(t, "Jane Smith", f.booking(a.ID).Guest.FullName)

	_, err = guests.Update(f.ctx, f.prop.ID, a.GuestID, GuestInput{Name: "Jane", Email: "BOB@example.com"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "guest.email", verr.Field)

	list, err := guests.List(f.ctx, f.prop.ID, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob@example.com", list[0].Email)
}

func TestPropertyService(t *testing.T) {
	f := newFixture(t)
	props := NewPropertyService(f.store)

	p, err := props.Create(f.ctx, PropertyInput{Name: "Beach Resort", Timezone: "Asia/Bangkok"})
	require.NoError(t, err)

	_, err = props.Create(f.ctx, PropertyInput{Name: "Nowhere", Timezone: "Not/AZone"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "timezone", verr.Field)

	updated, err := props.Update(f.ctx, p.ID, PropertyInput{Name: "Beach Resort & Spa", Timezone: "Asia/Bangkok"})
	require.NoError(t, err)
	assert.Equal(t, "Beach Resort & Spa", updated.Name)

	list, err := props.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAuthService(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(f.store)
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NoError(t, f.store.CreateStaff(f.ctx, &models.Staff{Username: "desk", Password: hash, Role: models.RoleFrontdesk}))

	st, err := auth.Authenticate(f.ctx, "desk", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleFrontdesk, st.Role)

	_, err = auth.Authenticate(f.ctx, "desk", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate(f.ctx, "ghost", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
