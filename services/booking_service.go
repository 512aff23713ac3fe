// services/booking_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"hotel-ops/events"
	"hotel-ops/models"
	"hotel-ops/repository"
)

// BookingService owns availability, pricing and the booking/room status
// lifecycle. Every write goes through one store transaction.
type BookingService struct {
	Store     repository.Store
	Publisher events.Publisher

	// Now is the clock; tests replace it.
	Now func() time.Time
	// DefaultLocation is used for properties without a valid timezone.
	DefaultLocation *time.Location
	// SweepBatchSize bounds how many bookings one sweep query loads.
	SweepBatchSize int

	locations sync.Map // timezone name -> *time.Location
}

func NewBookingService(store repository.Store, publisher events.Publisher) *BookingService {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &BookingService{
		Store:           store,
		Publisher:       publisher,
		Now:             time.Now,
		DefaultLocation: time.Local,
		SweepBatchSize:  50,
	}
}

type GuestInput struct {
	Name  string
	Email string
	Phone string
}

type RoomRequest struct {
	RoomID   uint
	Quantity int
}

type CreateBookingInput struct {
	Guest    GuestInput
	CheckIn  string
	CheckOut string
	Rooms    []RoomRequest
	// Status is confirmed (default) or checked_in for an immediate arrival.
	Status           string
	Notes            string
	PaymentConfirmed bool
	PaymentStatus    string
	PaymentMethod    string
}

// BookingPatch changes only the non-nil fields. Rooms replaces the whole
// line item set when non-nil.
type BookingPatch struct {
	Guest            *GuestInput
	CheckIn          *string
	CheckOut         *string
	Rooms            []RoomRequest
	Status           *string
	Notes            *string
	PaymentConfirmed *bool
	PaymentStatus    *string
	PaymentMethod    *string
}

func (s *BookingService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// CurrentTime is the service clock.
func (s *BookingService) CurrentTime() time.Time {
	return s.now()
}

// Location resolves a property's timezone, falling back to DefaultLocation.
func (s *BookingService) Location(p *models.Property) *time.Location {
	fallback := s.DefaultLocation
	if fallback == nil {
		fallback = time.Local
	}
	name := strings.TrimSpace(p.Timezone)
	if name == "" {
		return fallback
	}
	if v, ok := s.locations.Load(name); ok {
		return v.(*time.Location)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("⚠️ property %d has unknown timezone %q, using %s", p.ID, name, fallback)
		return fallback
	}
	s.locations.Store(name, loc)
	return loc
}

func (s *BookingService) property(ctx context.Context, store repository.Store, id uint) (*models.Property, error) {
	p, err := store.GetProperty(ctx, id)
	if err != nil {
		return nil, notFound(err, "property", id)
	}
	return p, nil
}

// stayRange normalizes both dates in loc and checks the range is valid.
func stayRange(checkIn, checkOut string, loc *time.Location) (time.Time, time.Time, error) {
	ci, err := NormalizeStayDate(checkIn, "check_in", loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	co, err := NormalizeStayDate(checkOut, "check_out", loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !co.After(ci) {
		return time.Time{}, time.Time{}, invalid("check_out", "must be after check_in")
	}
	return ci, co, nil
}

func validateGuest(g GuestInput) error {
	if strings.TrimSpace(g.Name) == "" {
		return invalid("guest.name", "is required")
	}
	email := strings.TrimSpace(g.Email)
	if email == "" {
		return invalid("guest.email", "is required")
	}
	if !strings.Contains(email, "@") {
		return invalid("guest.email", "is not a valid email address")
	}
	return nil
}

func validateRoomRequests(reqs []RoomRequest) ([]RoomRequest, error) {
	if len(reqs) == 0 {
		return nil, invalid("rooms", "at least one room is required")
	}
	seen := make(map[uint]struct{}, len(reqs))
	out := make([]RoomRequest, 0, len(reqs))
	for _, r := range reqs {
		if r.RoomID == 0 {
			return nil, invalid("rooms", "room id is required")
		}
		if _, dup := seen[r.RoomID]; dup {
			return nil, invalid("rooms", "room %d is listed more than once", r.RoomID)
		}
		seen[r.RoomID] = struct{}{}
		if r.Quantity == 0 {
			r.Quantity = 1
		}
		if r.Quantity < 0 {
			return nil, invalid("rooms", "room %d quantity must be at least 1", r.RoomID)
		}
		out = append(out, r)
	}
	return out, nil
}

// lockPropertyRooms locks ids and checks they all exist in the property.
func lockPropertyRooms(ctx context.Context, tx repository.Store, propertyID uint, ids []uint) (map[uint]models.Room, error) {
	rooms, err := tx.LockRooms(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock rooms: %w", err)
	}
	byID := make(map[uint]models.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	for _, id := range ids {
		r, ok := byID[id]
		if !ok || r.PropertyID != propertyID {
			return nil, &NotFoundError{Entity: "room", ID: id}
		}
	}
	return byID, nil
}

// findOrCreateGuest reuses the property's guest with the same email.
func findOrCreateGuest(ctx context.Context, tx repository.Store, propertyID uint, in GuestInput) (*models.Guest, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	g, err := tx.FindGuestByEmail(ctx, propertyID, email)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up guest: %w", err)
	}

	g = &models.Guest{
		PropertyID: propertyID,
		FullName:   strings.TrimSpace(in.Name),
		Email:      email,
		Phone:      strings.TrimSpace(in.Phone),
	}
	if err := tx.CreateGuest(ctx, g); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return tx.FindGuestByEmail(ctx, propertyID, email)
		}
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}
	return g, nil
}

func eventDetail(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func (s *BookingService) publish(ctx context.Context, msgs []events.Message) {
	for _, m := range msgs {
		if err := s.Publisher.Publish(ctx, m); err != nil {
			log.Printf("⚠️ failed to publish %s for booking %d: %v", m.Type, m.BookingID, err)
		}
	}
}

// CreateBooking validates, prices and stores a booking. All rooms must be
// free for the normalized range, otherwise a ConflictError names the first
// blocking booking.
func (s *BookingService) CreateBooking(ctx context.Context, propertyID uint, in CreateBookingInput) (*models.Booking, error) {
	if err := validateGuest(in.Guest); err != nil {
		return nil, err
	}
	reqs, err := validateRoomRequests(in.Rooms)
	if err != nil {
		return nil, err
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.BookingStatusConfirmed
	}
	if status != models.BookingStatusConfirmed && status != models.BookingStatusCheckedIn {
		return nil, invalid("status", "a new booking must be %s or %s", models.BookingStatusConfirmed, models.BookingStatusCheckedIn)
	}

	prop, err := s.property(ctx, s.Store, propertyID)
	if err != nil {
		return nil, err
	}
	loc := s.Location(prop)
	checkIn, checkOut, err := stayRange(in.CheckIn, in.CheckOut, loc)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if status == models.BookingStatusConfirmed && checkIn.Before(NoonOf(now, loc)) {
		return nil, invalid("check_in", "cannot be in the past")
	}

	roomIDs := make([]uint, len(reqs))
	for i, r := range reqs {
		roomIDs[i] = r.RoomID
	}

	var (
		bookingID uint
		pending   []events.Message
	)
	txErr := s.Store.Transaction(ctx, func(tx repository.Store) error {
		rooms, err := lockPropertyRooms(ctx, tx, propertyID, roomIDs)
		if err != nil {
			return err
		}

		items := make([]LineItem, len(reqs))
		for i, r := range reqs {
			items[i] = LineItem{RoomID: r.RoomID, Rate: rooms[r.RoomID].Price, Quantity: r.Quantity}
		}
		quote, err := QuoteStay(checkIn, checkOut, items)
		if err != nil {
			return err
		}

		for _, id := range roomIDs {
			blocking, err := firstConflict(ctx, tx, id, checkIn, checkOut, 0)
			if err != nil {
				return err
			}
			if blocking != 0 {
				return &ConflictError{RoomID: id, ConflictingBookingID: blocking}
			}
		}

		guest, err := findOrCreateGuest(ctx, tx, propertyID, in.Guest)
		if err != nil {
			return err
		}

		booking := models.Booking{
			PropertyID:       propertyID,
			GuestID:          guest.ID,
			ReferenceCode:    strings.ToUpper(uuid.NewString()),
			CheckIn:          checkIn,
			CheckOut:         checkOut,
			Nights:           quote.Nights,
			Status:           status,
			TotalPrice:       quote.Total,
			Notes:            strings.TrimSpace(in.Notes),
			PaymentConfirmed: in.PaymentConfirmed,
			PaymentStatus:    strings.TrimSpace(in.PaymentStatus),
			PaymentMethod:    strings.TrimSpace(in.PaymentMethod),
			Rooms:            make([]models.BookedRoom, len(items)),
		}
		if status == models.BookingStatusCheckedIn {
			booking.CheckedInAt = &now
		}
		for i, it := range items {
			booking.Rooms[i] = models.BookedRoom{RoomID: it.RoomID, Rate: it.Rate, Quantity: it.Quantity}
		}

		if err := tx.CreateBooking(ctx, &booking); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		bookingID = booking.ID

		if err := tx.RecordBookingEvent(ctx, &models.BookingEvent{
			BookingID:  booking.ID,
			PropertyID: propertyID,
			ToStatus:   status,
			Source:     models.EventSourceCreate,
			Detail:     eventDetail(quote),
			CreatedAt:  now,
		}); err != nil {
			return fmt.Errorf("failed to record booking event: %w", err)
		}

		pending = append(pending, events.Message{
			Type:       events.TypeBookingCreated,
			PropertyID: propertyID,
			BookingID:  booking.ID,
			RoomIDs:    roomIDs,
			To:         status,
			Source:     models.EventSourceCreate,
			OccurredAt: now,
		})
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publish(ctx, pending)
	log.Printf("✅ booking %d created for property %d (%s → %s)", bookingID, propertyID, checkIn.Format(dateLayout), checkOut.Format(dateLayout))
	return s.Store.GetBooking(ctx, bookingID)
}

// UpdateBooking applies a patch. Date or room changes re-run availability
// excluding the booking itself; any failure leaves the booking untouched.
func (s *BookingService) UpdateBooking(ctx context.Context, propertyID, bookingID uint, patch BookingPatch) (*models.Booking, error) {
	if patch.Guest != nil {
		if err := validateGuest(*patch.Guest); err != nil {
			return nil, err
		}
	}
	var reqs []RoomRequest
	if patch.Rooms != nil {
		var err error
		if reqs, err = validateRoomRequests(patch.Rooms); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil && !models.IsBookingStatus(strings.TrimSpace(*patch.Status)) {
		return nil, invalid("status", "unknown booking status %q", *patch.Status)
	}

	prop, err := s.property(ctx, s.Store, propertyID)
	if err != nil {
		return nil, err
	}
	loc := s.Location(prop)
	now := s.now()

	var pending []events.Message
	txErr := s.Store.Transaction(ctx, func(tx repository.Store) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking", bookingID)
		}
		if b.PropertyID != propertyID {
			return &NotFoundError{Entity: "booking", ID: bookingID}
		}

		target := b.Status
		if patch.Status != nil {
			target = strings.TrimSpace(*patch.Status)
		}
		if target != b.Status && !canTransition(b.Status, target) {
			return &TransitionError{Entity: "booking", From: b.Status, To: target}
		}

		datesChanged := patch.CheckIn != nil || patch.CheckOut != nil
		roomsChanged := patch.Rooms != nil
		if (datesChanged || roomsChanged) && !models.IsOccupying(b.Status) {
			return invalid("status", "dates and rooms of a %s booking cannot be changed", b.Status)
		}

		checkIn, checkOut := b.CheckIn, b.CheckOut
		if datesChanged {
			ciRaw, coRaw := b.CheckIn.Format(time.RFC3339), b.CheckOut.Format(time.RFC3339)
			if patch.CheckIn != nil {
				ciRaw = *patch.CheckIn
			}
			if patch.CheckOut != nil {
				coRaw = *patch.CheckOut
			}
			if checkIn, checkOut, err = stayRange(ciRaw, coRaw, loc); err != nil {
				return err
			}
		}

		if datesChanged || roomsChanged {
			previousRates := make(map[uint]float64, len(b.Rooms))
			for _, br := range b.Rooms {
				previousRates[br.RoomID] = br.Rate
			}
			if !roomsChanged {
				reqs = make([]RoomRequest, len(b.Rooms))
				for i, br := range b.Rooms {
					reqs[i] = RoomRequest{RoomID: br.RoomID, Quantity: br.Quantity}
				}
			}

			lockIDs := b.RoomIDs()
			newIDs := make([]uint, len(reqs))
			for i, r := range reqs {
				newIDs[i] = r.RoomID
				if _, ok := previousRates[r.RoomID]; !ok {
					lockIDs = append(lockIDs, r.RoomID)
				}
			}
			rooms, err := lockPropertyRooms(ctx, tx, propertyID, lockIDs)
			if err != nil {
				return err
			}

			items := make([]LineItem, len(reqs))
			for i, r := range reqs {
				rate, kept := previousRates[r.RoomID]
				if !kept {
					rate = rooms[r.RoomID].Price
				}
				items[i] = LineItem{RoomID: r.RoomID, Rate: rate, Quantity: r.Quantity}
			}
			quote, err := QuoteStay(checkIn, checkOut, items)
			if err != nil {
				return err
			}

			if models.IsOccupying(target) {
				for _, id := range newIDs {
					blocking, err := firstConflict(ctx, tx, id, checkIn, checkOut, b.ID)
					if err != nil {
						return err
					}
					if blocking != 0 {
						return &ConflictError{RoomID: id, ConflictingBookingID: blocking}
					}
				}
			}

			b.CheckIn, b.CheckOut = checkIn, checkOut
			b.Nights = quote.Nights
			b.TotalPrice = quote.Total
			b.Rooms = make([]models.BookedRoom, len(items))
			for i, it := range items {
				b.Rooms[i] = models.BookedRoom{BookingID: b.ID, RoomID: it.RoomID, Rate: it.Rate, Quantity: it.Quantity}
			}
		}

		if patch.Guest != nil {
			guest, err := findOrCreateGuest(ctx, tx, propertyID, *patch.Guest)
			if err != nil {
				return err
			}
			b.GuestID = guest.ID
			b.Guest = *guest
		}
		if patch.Notes != nil {
			b.Notes = strings.TrimSpace(*patch.Notes)
		}
		if patch.PaymentConfirmed != nil {
			b.PaymentConfirmed = *patch.PaymentConfirmed
		}
		if patch.PaymentStatus != nil {
			b.PaymentStatus = strings.TrimSpace(*patch.PaymentStatus)
		}
		if patch.PaymentMethod != nil {
			b.PaymentMethod = strings.TrimSpace(*patch.PaymentMethod)
		}

		if err := tx.SaveBooking(ctx, b); err != nil {
			return fmt.Errorf("failed to save booking %d: %w", b.ID, err)
		}
		if datesChanged || roomsChanged {
			if err := tx.RecordBookingEvent(ctx, &models.BookingEvent{
				BookingID:  b.ID,
				PropertyID: propertyID,
				FromStatus: b.Status,
				ToStatus:   b.Status,
				Source:     models.EventSourceUpdate,
				Detail: eventDetail(map[string]interface{}{
					"checkIn":    b.CheckIn,
					"checkOut":   b.CheckOut,
					"nights":     b.Nights,
					"totalPrice": b.TotalPrice,
					"roomIds":    b.RoomIDs(),
				}),
				CreatedAt: now,
			}); err != nil {
				return fmt.Errorf("failed to record booking event: %w", err)
			}
		}
		pending = append(pending, events.Message{
			Type:       events.TypeBookingUpdated,
			PropertyID: propertyID,
			BookingID:  b.ID,
			RoomIDs:    b.RoomIDs(),
			Source:     models.EventSourceUpdate,
			OccurredAt: now,
		})

		if target != b.Status {
			msgs, err := s.applyTransition(ctx, tx, b, target, models.EventSourceManual, now)
			if err != nil {
				return err
			}
			pending = append(pending, msgs...)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publish(ctx, pending)
	return s.Store.GetBooking(ctx, bookingID)
}

func (s *BookingService) DeleteBooking(ctx context.Context, propertyID, bookingID uint) error {
	var roomIDs []uint
	txErr := s.Store.Transaction(ctx, func(tx repository.Store) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking", bookingID)
		}
		if b.PropertyID != propertyID {
			return &NotFoundError{Entity: "booking", ID: bookingID}
		}
		roomIDs = b.RoomIDs()
		if err := tx.DeleteBooking(ctx, bookingID); err != nil {
			return notFound(err, "booking", bookingID)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	s.publish(ctx, []events.Message{{
		Type:       events.TypeBookingDeleted,
		PropertyID: propertyID,
		BookingID:  bookingID,
		RoomIDs:    roomIDs,
		OccurredAt: s.now(),
	}})
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, propertyID, bookingID uint) (*models.Booking, error) {
	b, err := s.Store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking", bookingID)
	}
	if b.PropertyID != propertyID {
		return nil, &NotFoundError{Entity: "booking", ID: bookingID}
	}
	return b, nil
}

// ListBookings filters by status and by a [from, to) date window given as
// bare dates in the property's timezone.
func (s *BookingService) ListBookings(ctx context.Context, propertyID uint, status, from, to string) ([]models.Booking, error) {
	prop, err := s.property(ctx, s.Store, propertyID)
	if err != nil {
		return nil, err
	}
	loc := s.Location(prop)

	f := repository.BookingFilter{Status: strings.TrimSpace(status)}
	if f.Status != "" && !models.IsBookingStatus(f.Status) {
		return nil, invalid("status", "unknown booking status %q", f.Status)
	}
	if strings.TrimSpace(from) != "" {
		t, err := NormalizeStayDate(from, "from", loc)
		if err != nil {
			return nil, err
		}
		f.From = &t
	}
	if strings.TrimSpace(to) != "" {
		t, err := NormalizeStayDate(to, "to", loc)
		if err != nil {
			return nil, err
		}
		f.To = &t
	}

	list, err := s.Store.ListBookings(ctx, propertyID, f)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return list, nil
}

func (s *BookingService) ListBookingEvents(ctx context.Context, propertyID, bookingID uint) ([]models.BookingEvent, error) {
	if _, err := s.GetBooking(ctx, propertyID, bookingID); err != nil {
		return nil, err
	}
	return s.Store.ListBookingEvents(ctx, bookingID)
}

// QuoteBooking prices a prospective stay at the rooms' current rates
// without writing anything.
func (s *BookingService) QuoteBooking(ctx context.Context, propertyID uint, checkIn, checkOut string, reqs []RoomRequest) (Quote, error) {
	reqs, err := validateRoomRequests(reqs)
	if err != nil {
		return Quote{}, err
	}
	prop, err := s.property(ctx, s.Store, propertyID)
	if err != nil {
		return Quote{}, err
	}
	ci, co, err := stayRange(checkIn, checkOut, s.Location(prop))
	if err != nil {
		return Quote{}, err
	}

	items := make([]LineItem, len(reqs))
	for i, r := range reqs {
		room, err := s.Store.GetRoom(ctx, r.RoomID)
		if err != nil {
			return Quote{}, notFound(err, "room", r.RoomID)
		}
		if room.PropertyID != propertyID {
			return Quote{}, &NotFoundError{Entity: "room", ID: r.RoomID}
		}
		items[i] = LineItem{RoomID: r.RoomID, Rate: room.Price, Quantity: r.Quantity}
	}
	return QuoteStay(ci, co, items)
}
