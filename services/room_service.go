package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hotel-ops/events"
	"hotel-ops/models"
	"hotel-ops/repository"
)

type RoomService struct {
	Bookings *BookingService
}

func NewRoomService(bookings *BookingService) *RoomService {
	return &RoomService{Bookings: bookings}
}

// RoomView is a room plus its occupancy right now. Occupancy is never
// stored; it comes from the bookings covering the current instant.
type RoomView struct {
	models.Room
	Occupied         bool  `json:"occupied"`
	CurrentBookingID *uint `json:"currentBookingId,omitempty"`
}

type RoomInput struct {
	RoomNumber  string
	Type        string
	Floor       int
	Price       float64
	Status      string
	Description string
}

func (s *RoomService) store() repository.Store {
	return s.Bookings.Store
}

func validateRoomInput(in *RoomInput) error {
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	in.Type = strings.TrimSpace(in.Type)
	in.Status = strings.TrimSpace(in.Status)
	if in.RoomNumber == "" {
		return invalid("room_number", "is required")
	}
	if in.Price < 0 {
		return invalid("price", "must not be negative")
	}
	if in.Status != "" && !models.IsRoomStatus(in.Status) {
		return invalid("status", "unknown room status %q", in.Status)
	}
	return nil
}

func (s *RoomService) propertyRoom(ctx context.Context, store repository.Store, propertyID, roomID uint) (*models.Room, error) {
	r, err := store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, notFound(err, "room", roomID)
	}
	if r.PropertyID != propertyID {
		return nil, &NotFoundError{Entity: "room", ID: roomID}
	}
	return r, nil
}

// ----------------------------------------------------
// CREATE / UPDATE
// ----------------------------------------------------

func (s *RoomService) Create(ctx context.Context, propertyID uint, in RoomInput) (*models.Room, error) {
	if err := validateRoomInput(&in); err != nil {
		return nil, err
	}
	if _, err := s.Bookings.property(ctx, s.store(), propertyID); err != nil {
		return nil, err
	}

	if in.Status == "" {
		in.Status = models.RoomStatusReady
	}
	room := models.Room{
		PropertyID:  propertyID,
		RoomNumber:  in.RoomNumber,
		Type:        in.Type,
		Floor:       in.Floor,
		Price:       in.Price,
		Status:      in.Status,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.store().CreateRoom(ctx, &room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("room_number", "room %s already exists", room.RoomNumber)
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	log.Printf("✅ room %s created for property %d", room.RoomNumber, propertyID)
	return &room, nil
}

// Update edits room details. A price change only affects bookings made
// afterwards since line items keep their own rate. Status is left alone;
// it only moves through SetStatus and the booking lifecycle.
func (s *RoomService) Update(ctx context.Context, propertyID, roomID uint, in RoomInput) (*models.Room, error) {
	if err := validateRoomInput(&in); err != nil {
		return nil, err
	}

	var room *models.Room
	err := s.store().Transaction(ctx, func(tx repository.Store) error {
		locked, err := tx.LockRooms(ctx, []uint{roomID})
		if err != nil {
			return fmt.Errorf("failed to lock room %d: %w", roomID, err)
		}
		if len(locked) == 0 || locked[0].PropertyID != propertyID {
			return &NotFoundError{Entity: "room", ID: roomID}
		}
		room = &locked[0]
		if in.Status != "" && in.Status != room.Status {
			return invalid("status", "use the room status endpoint to change status")
		}

		room.RoomNumber = in.RoomNumber
		room.Type = in.Type
		room.Floor = in.Floor
		room.Price = in.Price
		room.Description = strings.TrimSpace(in.Description)
		if err := tx.SaveRoom(ctx, room); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return invalid("room_number", "room %s already exists", room.RoomNumber)
			}
			return fmt.Errorf("failed to update room %d: %w", roomID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// ----------------------------------------------------
// STATUS
// ----------------------------------------------------

// SetStatus moves a room between ready, cleaning and maintenance. Any
// change is allowed; the current status is a no-op.
func (s *RoomService) SetStatus(ctx context.Context, propertyID, roomID uint, status string) (*models.Room, error) {
	status = strings.TrimSpace(status)
	if !models.IsRoomStatus(status) {
		return nil, invalid("status", "unknown room status %q", status)
	}

	var changed bool
	var room *models.Room
	err := s.store().Transaction(ctx, func(tx repository.Store) error {
		locked, err := tx.LockRooms(ctx, []uint{roomID})
		if err != nil {
			return fmt.Errorf("failed to lock room %d: %w", roomID, err)
		}
		if len(locked) == 0 || locked[0].PropertyID != propertyID {
			return &NotFoundError{Entity: "room", ID: roomID}
		}
		room = &locked[0]
		if room.Status == status {
			return nil
		}
		if err := tx.SetRoomStatus(ctx, []uint{roomID}, status); err != nil {
			return fmt.Errorf("failed to update room %d status: %w", roomID, err)
		}
		room.Status = status
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		log.Printf("🛏️ room %s is now %s", room.RoomNumber, status)
		s.publishStatus(ctx, room)
	}
	return room, nil
}

func (s *RoomService) publishStatus(ctx context.Context, room *models.Room) {
	s.Bookings.publish(ctx, []events.Message{{
		Type:       events.TypeRoomStatusChanged,
		PropertyID: room.PropertyID,
		RoomIDs:    []uint{room.ID},
		To:         room.Status,
		Source:     models.EventSourceManual,
		OccurredAt: s.Bookings.now(),
	}})
}

// ----------------------------------------------------
// READ
// ----------------------------------------------------

func (s *RoomService) List(ctx context.Context, propertyID uint, f repository.RoomFilter) ([]RoomView, error) {
	if f.Status != "" && !models.IsRoomStatus(f.Status) {
		return nil, invalid("status", "unknown room status %q", f.Status)
	}
	if _, err := s.Bookings.property(ctx, s.store(), propertyID); err != nil {
		return nil, err
	}
	rooms, err := s.store().ListRooms(ctx, propertyID, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	now := s.Bookings.now()
	occupied, err := s.store().OccupiedRoomIDs(ctx, propertyID, now, now.Add(time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("failed to load occupancy: %w", err)
	}
	busy := make(map[uint]struct{}, len(occupied))
	for _, id := range occupied {
		busy[id] = struct{}{}
	}

	views := make([]RoomView, len(rooms))
	for i, r := range rooms {
		_, occ := busy[r.ID]
		views[i] = RoomView{Room: r, Occupied: occ}
	}
	return views, nil
}

func (s *RoomService) Get(ctx context.Context, propertyID, roomID uint) (*RoomView, error) {
	room, err := s.propertyRoom(ctx, s.store(), propertyID, roomID)
	if err != nil {
		return nil, err
	}
	now := s.Bookings.now()
	current, err := s.store().OverlappingBookings(ctx, roomID, now, now.Add(time.Nanosecond), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupancy of room %d: %w", roomID, err)
	}

	view := &RoomView{Room: *room}
	if len(current) > 0 {
		id := current[0].ID
		view.Occupied = true
		view.CurrentBookingID = &id
	}
	return view, nil
}

// ----------------------------------------------------
// HOUSEKEEPING
// ----------------------------------------------------

// HousekeepingTask is derived from room status, never stored.
type HousekeepingTask struct {
	RoomID     uint      `json:"roomId"`
	RoomNumber string    `json:"roomNumber"`
	Floor      int       `json:"floor"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority"`
	Since      time.Time `json:"since"`
}

func (s *RoomService) HousekeepingTasks(ctx context.Context, propertyID uint) ([]HousekeepingTask, error) {
	if _, err := s.Bookings.property(ctx, s.store(), propertyID); err != nil {
		return nil, err
	}
	tasks := []HousekeepingTask{}
	for _, status := range []string{models.RoomStatusCleaning, models.RoomStatusMaintenance} {
		rooms, err := s.store().ListRooms(ctx, propertyID, repository.RoomFilter{Status: status})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s rooms: %w", status, err)
		}
		for _, r := range rooms {
			t := HousekeepingTask{
				RoomID:     r.ID,
				RoomNumber: r.RoomNumber,
				Floor:      r.Floor,
				Kind:       status,
				Status:     "pending",
				Priority:   "medium",
				Since:      r.UpdatedAt,
			}
			if status == models.RoomStatusMaintenance {
				t.Status = "in_progress"
				t.Priority = "high"
			}
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}
