package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops/models"
	"hotel-ops/repository"
)

func TestCreateBooking_OverlapConflictsWithExisting(t *testing.T) {
	f := newFixture(t)
	existing := f.book("2025-11-10", "2025-11-13", "101")
	assert.Equal(t, 3, existing.Nights)
	assert.Equal(t, 300.0, existing.TotalPrice)

	_, err := f.svc.CreateBooking(f.ctx, f.prop.ID, f.input("2025-11-12", "2025-11-14", "101"))
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, f.roomID("101"), cerr.RoomID)
	assert.Equal(t, existing.ID, cerr.ConflictingBookingID)
}

func TestCreateBooking_BackToBackSucceeds(t *testing.T) {
	f := newFixture(t)
	first := f.book("2025-11-10", "2025-11-13", "101")
	second := f.book("2025-11-13", "2025-11-15", "101")

	assert.True(t, first.CheckOut.Equal(second.CheckIn))
	assert.Equal(t, 2, second.Nights)
}

func TestIsAvailable_OverlapGrid(t *testing.T) {
	f := newFixture(t)
	f.book("2025-11-10", "2025-11-13", "101")

	cases := []struct {
		ci, co string
		free   bool
	}{
		{"2025-11-05", "2025-11-10", true},  // ends on arrival
		{"2025-11-13", "2025-11-16", true},  // starts on departure
		{"2025-11-05", "2025-11-11", false}, // tail overlap
		{"2025-11-12", "2025-11-20", false}, // head overlap
		{"2025-11-11", "2025-11-12", false}, // inside
		{"2025-11-01", "2025-11-30", false}, // around
		{"2025-11-10", "2025-11-13", false}, // identical
		{"2025-11-14", "2025-11-16", true},  // disjoint
	}
	for _, tc := range cases {
		free, err := f.svc.IsAvailable(f.ctx, f.prop.ID, f.roomID("101"), tc.ci, tc.co, 0)
		require.NoError(t, err)
		assert.Equal(t, tc.free, free, "%s → %s", tc.ci, tc.co)
	}

	// Another room is never blocked by it.
	free, err := f.svc.IsAvailable(f.ctx, f.prop.ID, f.roomID("102"), "2025-11-10", "2025-11-13", 0)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestIsAvailable_ExcludesOwnBooking(t *testing.T) {
	f := newFixture(t)
	b := f.book("2025-11-10", "2025-11-13", "101")

	free, err := f.svc.IsAvailable(f.ctx, f.prop.ID, f.roomID("101"), "2025-11-11", "2025-11-14", b.ID)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestIsAvailable_IgnoresRoomStatus(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetRoomStatus(f.ctx, []uint{f.roomID("101")}, models.RoomStatusMaintenance))

	free, err := f.svc.IsAvailable(f.ctx, f.prop.ID, f.roomID("101"), "2025-11-10", "2025-11-13", 0)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestIsAvailable_CancelledBookingFreesRoom(t *testing.T) {
	f := newFixture(t)
	b := f.book("2025-11-10", "2025-11-13", "101")

	_, err := f.svc.TransitionBookingStatus(f.ctx, f.prop.ID, b.ID, models.BookingStatusCancelled)
	require.NoError(t, err)

	free, err := f.svc.IsAvailable(f.ctx, f.prop.ID, f.roomID("101"), "2025-11-10", "2025-11-13", 0)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestIsAvailable_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.IsAvailable(f.ctx, f.prop.ID, 9999, "2025-11-10", "2025-11-13", 0)
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "room", nerr.Entity)

	_, err = f.svc.IsAvailable(f.ctx, 9999, f.roomID("101"), "2025-11-10", "2025-11-13", 0)
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "property", nerr.Entity)

	_, err = f.svc.IsAvailable(f.ctx, f.prop.ID, f.roomID("101"), "2025-11-13", "2025-11-10", 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "check_out", verr.Field)
}

func TestIsAvailable_RoomOfOtherProperty(t *testing.T) {
	f := newFixture(t)
	other := models.Property{Name: "Other", Timezone: "UTC"}
	require.NoError(t, f.store.CreateProperty(f.ctx, &other))

	_, err := f.svc.IsAvailable(f.ctx, other.ID, f.roomID("101"), "2025-11-10", "2025-11-13", 0)
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func roomNumbers(rooms []models.Room) []string {
	out := make([]string, len(rooms))
	for i, r := range rooms {
		out[i] = r.RoomNumber
	}
	return out
}

func TestFindAvailableRooms(t *testing.T) {
	f := newFixture(t)
	f.book("2025-11-10", "2025-11-13", "101")
	require.NoError(t, f.store.SetRoomStatus(f.ctx, []uint{f.roomID("201")}, models.RoomStatusCleaning))

	rooms, err := f.svc.FindAvailableRooms(f.ctx, f.prop.ID, "2025-11-11", "2025-11-12", repository.RoomFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"102"}, roomNumbers(rooms))

	rooms, err = f.svc.FindAvailableRooms(f.ctx, f.prop.ID, "2025-11-13", "2025-11-14", repository.RoomFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102"}, roomNumbers(rooms))
}

func TestFindAvailableRooms_Filters(t *testing.T) {
	f := newFixture(t)
	floor := 2

	rooms, err := f.svc.FindAvailableRooms(f.ctx, f.prop.ID, "2025-11-10", "2025-11-12", repository.RoomFilter{Type: "standard"})
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "201"}, roomNumbers(rooms))

	rooms, err = f.svc.FindAvailableRooms(f.ctx, f.prop.ID, "2025-11-10", "2025-11-12", repository.RoomFilter{Floor: &floor})
	require.NoError(t, err)
	assert.Equal(t, []string{"201"}, roomNumbers(rooms))

	rooms, err = f.svc.FindAvailableRooms(f.ctx, f.prop.ID, "2025-11-10", "2025-11-12", repository.RoomFilter{Search: "10"})
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102"}, roomNumbers(rooms))
}
