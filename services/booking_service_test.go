package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops/events"
	"hotel-ops/models"
)

func strPtr(s string) *string { return &s }

func TestCreateBooking_SnapshotsRatesAndTotal(t *testing.T) {
	f := newFixture(t)
	b := f.book("2025-11-10", "2025-11-13", "101", "102")

	assert.Equal(t, models.BookingStatusConfirmed, b.Status)
	assert.True(t, b.CheckIn.Equal(noon(2025, 11, 10)))
	assert.True(t, b.CheckOut.Equal(noon(2025, 11, 13)))
	assert.Equal(t, 3, b.Nights)
	assert.Equal(t, 750.0, b.TotalPrice)
	assert.NotEmpty(t, b.ReferenceCode)
	require.Len(t, b.Rooms, 2)
	assert.Equal(t, "jane@example.com", b.Guest.Email)

	rates := map[uint]float64{}
	for _, br := range b.Rooms {
		rates[br.RoomID] = br.Rate
	}
	assert.Equal(t, 100.0, rates[f.roomID("101")])
	assert.Equal(t, 150.0, rates[f.roomID("102")])

	created := f.events.OfType(events.TypeBookingCreated)
	require.Len(t, created, 1)
	assert.Equal(t, b.ID, created[0].BookingID)

	history, err := f.svc.ListBookingEvents(f.ctx, f.prop.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.EventSourceCreate, history[0].Source)
}

func TestCreateBooking_ReusesGuestByEmail(t *testing.T) {
	f := newFixture(t)
	first := f.book("2025-11-10", "2025-11-12", "101")

	in := f.input("2025-11-10", "2025-11-12", "102")
	in.Guest.Email = "  JANE@example.com "
	second, err := f.svc.CreateBooking(f.ctx, f.prop.ID, in)
	require.NoError(t, err)

	assert.Equal(t, first.GuestID, second.GuestID)
	guests, err := f.store.ListGuests(f.ctx, f.prop.ID, "")
	require.NoError(t, err)
	assert.Len(t, guests, 1)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		mutate func(*CreateBookingInput)
		field  string
	}{
		{"missing guest name", func(in *CreateBookingInput) { in.Guest.Name = "" }, "guest.name"},
		{"bad email", func(in *CreateBookingInput) { in.Guest.Email = "nobody" }, "guest.email"},
		{"no rooms", func(in *CreateBookingInput) { in.Rooms = nil }, "rooms"},
		{"duplicate room", func(in *CreateBookingInput) { in.Rooms = append(in.Rooms, in.Rooms[0]) }, "rooms"},
		{"same day", func(in *CreateBookingInput) { in.CheckOut = in.CheckIn }, "check_out"},
		{"bad date", func(in *CreateBookingInput) { in.CheckIn = "11/10/2025" }, "check_in"},
		{"past arrival", func(in *CreateBookingInput) { in.CheckIn = "2025-10-30" }, "check_in"},
		{"bad status", func(in *CreateBookingInput) { in.Status = models.BookingStatusCheckedOut }, "status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := f.input("2025-11-10", "2025-11-12", "101")
			tc.mutate(&in)
			_, err := f.svc.CreateBooking(f.ctx, f.prop.ID, in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	list, err := f.svc.ListBookings(f.ctx, f.prop.ID, "", "", "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateBooking_WalkInMayStartInPast(t *testing.T) {
	f := newFixture(t)
	in := f.input("2025-10-31", "2025-11-02", "101")
	in.Status = models.BookingStatusCheckedIn

	b, err := f.svc.CreateBooking(f.ctx, f.prop.ID, in)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCheckedIn, b.Status)
	require.NotNil(t, b.CheckedInAt)
}

func TestCreateBooking_UnknownRoomOrProperty(t *testing.T) {
	f := newFixture(t)

	in := f.input("2025-11-10", "2025-11-12")
	in.Rooms = []RoomRequest{{RoomID: 4242, Quantity: 1}}
	_, err := f.svc.CreateBooking(f.ctx, f.prop.ID, in)
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, uint(4242), nerr.ID)

	_, err = f.svc.CreateBooking(f.ctx, 4343, f.input("2025-11-10", "2025-11-12", "101"))
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "property", nerr.Entity)
}

func TestCreateBooking_ConflictLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.book("2025-11-10", "2025-11-13", "101")

	in := f.input("2025-11-11", "2025-11-12", "102", "101")
	in.Guest.Email = "new@example.com"
	_, err := f.svc.CreateBooking(f.ctx, f.prop.ID, in)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)

	_, err = f.store.FindGuestByEmail(f.ctx, f.prop.ID, "new@example.com")
	assert.Error(t, err)
	free, err := f.svc.IsAvailable(f.ctx, f.prop.ID, f.roomID("102"), "2025-11-11", "2025-11-12", 0)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestUpdateBooking_ConflictRollsBack(t *testing.T) {
	f := newFixture(t)
	f.book("2025-11-10", "2025-11-13", "101")
	mine := f.book("2025-11-10", "2025-11-13", "102")

	_, err := f.svc.UpdateBooking(f.ctx, f.prop.ID, mine.ID, BookingPatch{
		Rooms: []RoomRequest{{RoomID: f.roomID("101"), Quantity: 1}},
		Notes: strPtr("move me"),
	})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, f.roomID("101"), cerr.RoomID)

	after := f.booking(mine.ID)
	assert.Equal(t, []uint{f.roomID("102")}, after.RoomIDs())
	assert.Equal(t, 450.0, after.TotalPrice)
	assert.Empty(t, after.Notes)
}

func TestUpdateBooking_ExtendKeepsSnapshotRate(t *testing.T) {
	f := newFixture(t)
	b := f.book("2025-11-10", "2025-11-12", "101")

	room := f.room("101")
	room.Price = 180
	require.NoError(t, f.store.SaveRoom(f.ctx, room))

	updated, err := f.svc.UpdateBooking(f.ctx, f.prop.ID, b.ID, BookingPatch{CheckOut: strPtr("2025-11-14")})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Nights)
	assert.Equal(t, 400.0, updated.TotalPrice)

	added, err := f.svc.UpdateBooking(f.ctx, f.prop.ID, b.ID, BookingPatch{
		Rooms: []RoomRequest{{RoomID: f.roomID("101")}, {RoomID: f.roomID("102")}},
	})
	require.NoError(t, err)
	// 101 keeps 100, 102 is priced at today's 150.
	assert.Equal(t, 1000.0, added.TotalPrice)
}

func TestUpdateBooking_OverlapWithItselfIsFine(t *testing.T) {
	f := newFixture(t)
	b := f.book("2025-11-10", "2025-11-13", "101")

	updated, err := f.svc.UpdateBooking(f.ctx, f.prop.ID, b.ID, BookingPatch{
		CheckIn:  strPtr("2025-11-11"),
		CheckOut: strPtr("2025-11-14"),
	})
	require.NoError(t, err)
	assert.True(t, updated.CheckIn.Equal(noon(2025, 11, 11)))
	assert.Equal(t, 300.0, updated.TotalPrice)
}

func TestUpdateBooking_StatusThroughPatch(t *testing.T) {
	f := newFixture(t)
	b := f.book("2025-11-10", "2025-11-13", "101")

	_, err := f.svc.UpdateBooking(f.ctx, f.prop.ID, b.ID, BookingPatch{Status: strPtr(models.BookingStatusCheckedOut)})
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)

	cancelled, err := f.svc.UpdateBooking(f.ctx, f.prop.ID, b.ID, BookingPatch{
		Status: strPtr(models.BookingStatusCancelled),
		Notes:  strPtr("guest called"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, "guest called", cancelled.Notes)
	require.NotNil(t, cancelled.CancelledAt)

	_, err = f.svc.UpdateBooking(f.ctx, f.prop.ID, b.ID, BookingPatch{CheckOut: strPtr("2025-11-20")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUpdateBooking_ChangeGuest(t *testing.T) {
	f := newFixture(t)
	b := f.book("2025-11-10", "2025-11-13", "101")

	updated, err := f.svc.UpdateBooking(f.ctx, f.prop.ID, b.ID, BookingPatch{
		Guest: &GuestInput{Name: "John Roe", Email: "john@example.com"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, b.GuestID, updated.GuestID)
	assert.Equal(t, "john@example.com", updated.Guest.Email)
}

func TestDeleteBooking(t *testing.T) {
	f := newFixture(t)
	b := f.book("2025-11-10", "2025-11-13", "101")

	require.NoError(t, f.svc.DeleteBooking(f.ctx, f.prop.ID, b.ID))

	_, err := f.svc.GetBooking(f.ctx, f.prop.ID, b.ID)
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
	require.ErrorAs(t, f.svc.DeleteBooking(f.ctx, f.prop.ID, b.ID), &nerr)

	free, err := f.svc.IsAvailable(f.ctx, f.prop.ID, f.roomID("101"), "2025-11-10", "2025-11-13", 0)
	require.NoError(t, err)
	assert.True(t, free)
	assert.Len(t, f.events.OfType(events.TypeBookingDeleted), 1)
}

func TestBookings_ScopedToProperty(t *testing.T) {
	f := newFixture(t)
	b := f.book("2025-11-10", "2025-11-13", "101")

	other := models.Property{Name: "Other", Timezone: "UTC"}
	require.NoError(t, f.store.CreateProperty(f.ctx, &other))

	var nerr *NotFoundError
	_, err := f.svc.GetBooking(f.ctx, other.ID, b.ID)
	require.ErrorAs(t, err, &nerr)
	_, err = f.svc.TransitionBookingStatus(f.ctx, other.ID, b.ID, models.BookingStatusCancelled)
	require.ErrorAs(t, err, &nerr)
	require.ErrorAs(t, f.svc.DeleteBooking(f.ctx, other.ID, b.ID), &nerr)
}

func TestListBookings_Filters(t *testing.T) {
	f := newFixture(t)
	early := f.book("2025-11-05", "2025-11-07", "101")
	late := f.book("2025-11-20", "2025-11-22", "101")
	_, err := f.svc.TransitionBookingStatus(f.ctx, f.prop.ID, late.ID, models.BookingStatusCancelled)
	require.NoError(t, err)

	all, err := f.svc.ListBookings(f.ctx, f.prop.ID, "", "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	confirmed, err := f.svc.ListBookings(f.ctx, f.prop.ID, models.BookingStatusConfirmed, "", "")
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, early.ID, confirmed[0].ID)

	window, err := f.svc.ListBookings(f.ctx, f.prop.ID, "", "2025-11-15", "2025-11-30")
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, late.ID, window[0].ID)

	_, err = f.svc.ListBookings(f.ctx, f.prop.ID, "booked", "", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestQuoteBooking_UsesCurrentPrices(t *testing.T) {
	f := newFixture(t)
	q, err := f.svc.QuoteBooking(f.ctx, f.prop.ID, "2025-11-10", "2025-11-13", []RoomRequest{
		{RoomID: f.roomID("101"), Quantity: 1},
		{RoomID: f.roomID("102"), Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, 1200.0, q.Total)
}

func TestPropertyTimezone_FallsBack(t *testing.T) {
	f := newFixture(t)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	f.svc.DefaultLocation = tokyo

	assert.Equal(t, tokyo, f.svc.Location(&models.Property{Timezone: ""}))
	assert.Equal(t, tokyo, f.svc.Location(&models.Property{Timezone: "Mars/Olympus"}))
	assert.Equal(t, "Europe/Paris", f.svc.Location(&models.Property{Timezone: "Europe/Paris"}).String())
}
