package services

import (
	"context"
	"fmt"
	"time"

	"hotel-ops/models"
	"hotel-ops/repository"
)

// firstConflict returns the id of the earliest occupying booking that holds
// roomID inside [start, end), or 0 when the room is free.
func firstConflict(ctx context.Context, store repository.Store, roomID uint, start, end time.Time, excludeBookingID uint) (uint, error) {
	overlapping, err := store.OverlappingBookings(ctx, roomID, start, end, excludeBookingID)
	if err != nil {
		return 0, fmt.Errorf("failed to check availability of room %d: %w", roomID, err)
	}
	if len(overlapping) == 0 {
		return 0, nil
	}
	return overlapping[0].ID, nil
}

// IsAvailable reports whether no confirmed or checked-in booking other than
// excludeBookingID holds the room for any part of the stay. Room status does
// not matter here.
func (s *BookingService) IsAvailable(ctx context.Context, propertyID, roomID uint, checkIn, checkOut string, excludeBookingID uint) (bool, error) {
	prop, err := s.property(ctx, s.Store, propertyID)
	if err != nil {
		return false, err
	}
	start, end, err := stayRange(checkIn, checkOut, s.Location(prop))
	if err != nil {
		return false, err
	}

	room, err := s.Store.GetRoom(ctx, roomID)
	if err != nil {
		return false, notFound(err, "room", roomID)
	}
	if room.PropertyID != propertyID {
		return false, &NotFoundError{Entity: "room", ID: roomID}
	}

	blocking, err := firstConflict(ctx, s.Store, roomID, start, end, excludeBookingID)
	if err != nil {
		return false, err
	}
	return blocking == 0, nil
}

// FindAvailableRooms lists the property's ready rooms that match f and have
// no occupying booking overlapping the stay.
func (s *BookingService) FindAvailableRooms(ctx context.Context, propertyID uint, checkIn, checkOut string, f repository.RoomFilter) ([]models.Room, error) {
	prop, err := s.property(ctx, s.Store, propertyID)
	if err != nil {
		return nil, err
	}
	start, end, err := stayRange(checkIn, checkOut, s.Location(prop))
	if err != nil {
		return nil, err
	}

	f.Status = models.RoomStatusReady
	rooms, err := s.Store.ListRooms(ctx, propertyID, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	occupied, err := s.Store.OccupiedRoomIDs(ctx, propertyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupied rooms: %w", err)
	}

	taken := make(map[uint]struct{}, len(occupied))
	for _, id := range occupied {
		taken[id] = struct{}{}
	}
	free := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if _, busy := taken[r.ID]; !busy {
			free = append(free, r)
		}
	}
	return free, nil
}
