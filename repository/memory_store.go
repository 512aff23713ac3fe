package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hotel-ops/models"
)

// MemoryStore keeps everything in process memory. It backs DB_DRIVER=memory
// and the package tests. Transactions are serialized by a single mutex and
// rolled back by restoring a snapshot.
type MemoryStore struct {
	mu   *sync.Mutex
	st   *memState
	inTx bool
}

type memState struct {
	seq        uint
	properties map[uint]models.Property
	rooms      map[uint]models.Room
	guests     map[uint]models.Guest
	bookings   map[uint]models.Booking
	events     []models.BookingEvent
	alerts     map[uint]models.MaintenanceAlert
	staff      map[uint]models.Staff
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		st: &memState{
			properties: map[uint]models.Property{},
			rooms:      map[uint]models.Room{},
			guests:     map[uint]models.Guest{},
			bookings:   map[uint]models.Booking{},
			alerts:     map[uint]models.MaintenanceAlert{},
			staff:      map[uint]models.Staff{},
		},
	}
}

func (m *memState) clone() *memState {
	c := &memState{
		seq:        m.seq,
		properties: make(map[uint]models.Property, len(m.properties)),
		rooms:      make(map[uint]models.Room, len(m.rooms)),
		guests:     make(map[uint]models.Guest, len(m.guests)),
		bookings:   make(map[uint]models.Booking, len(m.bookings)),
		events:     append([]models.BookingEvent(nil), m.events...),
		alerts:     make(map[uint]models.MaintenanceAlert, len(m.alerts)),
		staff:      make(map[uint]models.Staff, len(m.staff)),
	}
	for k, v := range m.properties {
		c.properties[k] = v
	}
	for k, v := range m.rooms {
		c.rooms[k] = v
	}
	for k, v := range m.guests {
		c.guests[k] = v
	}
	for k, v := range m.bookings {
		v.Rooms = append([]models.BookedRoom(nil), v.Rooms...)
		c.bookings[k] = v
	}
	for k, v := range m.alerts {
		c.alerts[k] = v
	}
	for k, v := range m.staff {
		c.staff[k] = v
	}
	return c
}

func (m *memState) nextID() uint {
	m.seq++
	return m.seq
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			*s.st = *snapshot
		}
	}()

	tx := &MemoryStore{mu: s.mu, st: s.st, inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

// ----------------------------------------------------
// Properties
// ----------------------------------------------------

func (s *MemoryStore) ListProperties(ctx context.Context) ([]models.Property, error) {
	defer s.lock()()
	list := make([]models.Property, 0, len(s.st.properties))
	for _, p := range s.st.properties {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *MemoryStore) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	defer s.lock()()
	p, ok := s.st.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) CreateProperty(ctx context.Context, p *models.Property) error {
	defer s.lock()()
	p.ID = s.st.nextID()
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	s.st.properties[p.ID] = *p
	return nil
}

func (s *MemoryStore) SaveProperty(ctx context.Context, p *models.Property) error {
	defer s.lock()()
	if _, ok := s.st.properties[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now()
	s.st.properties[p.ID] = *p
	return nil
}

// ----------------------------------------------------
// Rooms
// ----------------------------------------------------

func (s *MemoryStore) GetRoom(ctx context.Context, id uint) (*models.Room, error) {
	defer s.lock()()
	r, ok := s.st.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) ListRooms(ctx context.Context, propertyID uint, f RoomFilter) ([]models.Room, error) {
	defer s.lock()()
	typ := strings.ToLower(strings.TrimSpace(f.Type))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	rooms := []models.Room{}
	for _, r := range s.st.rooms {
		if r.PropertyID != propertyID {
			continue
		}
		if typ != "" && strings.ToLower(r.Type) != typ {
			continue
		}
		if f.Floor != nil && r.Floor != *f.Floor {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.RoomNumber), search) &&
			!strings.Contains(strings.ToLower(r.Type), search) {
			continue
		}
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Floor != rooms[j].Floor {
			return rooms[i].Floor < rooms[j].Floor
		}
		return rooms[i].RoomNumber < rooms[j].RoomNumber
	})
	return rooms, nil
}

func (s *MemoryStore) LockRooms(ctx context.Context, ids []uint) ([]models.Room, error) {
	defer s.lock()()
	rooms := make([]models.Room, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.st.rooms[id]; ok {
			rooms = append(rooms, r)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (s *MemoryStore) roomNumberTaken(r *models.Room) bool {
	for _, other := range s.st.rooms {
		if other.ID != r.ID && other.PropertyID == r.PropertyID && other.RoomNumber == r.RoomNumber {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateRoom(ctx context.Context, r *models.Room) error {
	defer s.lock()()
	if s.roomNumberTaken(r) {
		return ErrDuplicate
	}
	r.ID = s.st.nextID()
	r.CreatedAt, r.UpdatedAt = time.Now(), time.Now()
	s.st.rooms[r.ID] = *r
	return nil
}

func (s *MemoryStore) SaveRoom(ctx context.Context, r *models.Room) error {
	defer s.lock()()
	if _, ok := s.st.rooms[r.ID]; !ok {
		return ErrNotFound
	}
	if s.roomNumberTaken(r) {
		return ErrDuplicate
	}
	r.UpdatedAt = time.Now()
	s.st.rooms[r.ID] = *r
	return nil
}

func (s *MemoryStore) SetRoomStatus(ctx context.Context, ids []uint, status string) error {
	defer s.lock()()
	for _, id := range ids {
		if r, ok := s.st.rooms[id]; ok {
			r.Status = status
			r.UpdatedAt = time.Now()
			s.st.rooms[id] = r
		}
	}
	return nil
}

// ----------------------------------------------------
// Guests
// ----------------------------------------------------

func (s *MemoryStore) GetGuest(ctx context.Context, id uint) (*models.Guest, error) {
	defer s.lock()()
	g, ok := s.st.guests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (s *MemoryStore) FindGuestByEmail(ctx context.Context, propertyID uint, email string) (*models.Guest, error) {
	defer s.lock()()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, g := range s.st.guests {
		if g.PropertyID == propertyID && g.Email == email {
			return &g, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListGuests(ctx context.Context, propertyID uint, search string) ([]models.Guest, error) {
	defer s.lock()()
	search = strings.ToLower(strings.TrimSpace(search))
	guests := []models.Guest{}
	for _, g := range s.st.guests {
		if g.PropertyID != propertyID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(g.FullName), search) &&
			!strings.Contains(strings.ToLower(g.Email), search) {
			continue
		}
		guests = append(guests, g)
	}
	sort.Slice(guests, func(i, j int) bool { return guests[i].ID > guests[j].ID })
	return guests, nil
}

func (s *MemoryStore) guestEmailTaken(g *models.Guest) bool {
	for _, other := range s.st.guests {
		if other.ID != g.ID && other.PropertyID == g.PropertyID && other.Email == g.Email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateGuest(ctx context.Context, g *models.Guest) error {
	defer s.lock()()
	if s.guestEmailTaken(g) {
		return ErrDuplicate
	}
	g.ID = s.st.nextID()
	g.CreatedAt, g.UpdatedAt = time.Now(), time.Now()
	s.st.guests[g.ID] = *g
	return nil
}

func (s *MemoryStore) SaveGuest(ctx context.Context, g *models.Guest) error {
	defer s.lock()()
	if _, ok := s.st.guests[g.ID]; !ok {
		return ErrNotFound
	}
	if s.guestEmailTaken(g) {
		return ErrDuplicate
	}
	g.UpdatedAt = time.Now()
	s.st.guests[g.ID] = *g
	return nil
}

// ----------------------------------------------------
// Bookings
// ----------------------------------------------------

// hydrate returns a copy of b with guest and rooms attached.
func (s *MemoryStore) hydrate(b models.Booking) models.Booking {
	b.Guest = s.st.guests[b.GuestID]
	items := make([]models.BookedRoom, len(b.Rooms))
	for i, br := range b.Rooms {
		br.Room = s.st.rooms[br.RoomID]
		items[i] = br
	}
	b.Rooms = items
	return b
}

// stored strips relations so only line item columns are kept.
func (s *MemoryStore) stored(b *models.Booking) models.Booking {
	out := *b
	out.Guest = models.Guest{}
	out.Rooms = make([]models.BookedRoom, len(b.Rooms))
	for i, br := range b.Rooms {
		br.Room = models.Room{}
		out.Rooms[i] = br
	}
	return out
}

func (s *MemoryStore) assignLineItems(b *models.Booking) {
	for i := range b.Rooms {
		b.Rooms[i].ID = s.st.nextID()
		b.Rooms[i].BookingID = b.ID
	}
}

func (s *MemoryStore) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	defer s.lock()()
	b, ok := s.st.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := s.hydrate(b)
	return &out, nil
}

func (s *MemoryStore) ListBookings(ctx context.Context, propertyID uint, f BookingFilter) ([]models.Booking, error) {
	defer s.lock()()
	list := []models.Booking{}
	for _, b := range s.st.bookings {
		if b.PropertyID != propertyID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.From != nil && !b.CheckOut.After(*f.From) {
			continue
		}
		if f.To != nil && !b.CheckIn.Before(*f.To) {
			continue
		}
		list = append(list, s.hydrate(b))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CheckIn.Equal(list[j].CheckIn) {
			return list[i].CheckIn.Before(list[j].CheckIn)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *MemoryStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	defer s.lock()()
	b.ID = s.st.nextID()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.UpdatedAt = b.CreatedAt
	s.assignLineItems(b)
	s.st.bookings[b.ID] = s.stored(b)
	return nil
}

func (s *MemoryStore) SaveBooking(ctx context.Context, b *models.Booking) error {
	defer s.lock()()
	if _, ok := s.st.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	b.UpdatedAt = time.Now()
	s.assignLineItems(b)
	s.st.bookings[b.ID] = s.stored(b)
	return nil
}

func (s *MemoryStore) DeleteBooking(ctx context.Context, id uint) error {
	defer s.lock()()
	if _, ok := s.st.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(s.st.bookings, id)
	kept := s.st.events[:0]
	for _, e := range s.st.events {
		if e.BookingID != id {
			kept = append(kept, e)
		}
	}
	s.st.events = kept
	return nil
}

func holdsRoom(b models.Booking, roomID uint) bool {
	for _, br := range b.Rooms {
		if br.RoomID == roomID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) OverlappingBookings(ctx context.Context, roomID uint, start, end time.Time, excludeBookingID uint) ([]models.Booking, error) {
	defer s.lock()()
	list := []models.Booking{}
	for _, b := range s.st.bookings {
		if b.ID == excludeBookingID || !models.IsOccupying(b.Status) || !holdsRoom(b, roomID) {
			continue
		}
		if b.CheckIn.Before(end) && b.CheckOut.After(start) {
			list = append(list, s.hydrate(b))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CheckIn.Equal(list[j].CheckIn) {
			return list[i].CheckIn.Before(list[j].CheckIn)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *MemoryStore) OccupiedRoomIDs(ctx context.Context, propertyID uint, start, end time.Time) ([]uint, error) {
	defer s.lock()()
	seen := map[uint]struct{}{}
	ids := []uint{}
	for _, b := range s.st.bookings {
		if b.PropertyID != propertyID || !models.IsOccupying(b.Status) {
			continue
		}
		if !(b.CheckIn.Before(end) && b.CheckOut.After(start)) {
			continue
		}
		for _, br := range b.Rooms {
			if _, ok := seen[br.RoomID]; !ok {
				seen[br.RoomID] = struct{}{}
				ids = append(ids, br.RoomID)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) TransitionBooking(ctx context.Context, id uint, from, to string, at time.Time) (bool, error) {
	defer s.lock()()
	b, ok := s.st.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = at
	switch to {
	case models.BookingStatusCheckedIn:
		b.CheckedInAt = &at
	case models.BookingStatusCheckedOut:
		b.CheckedOutAt = &at
	case models.BookingStatusCancelled:
		b.CancelledAt = &at
	}
	s.st.bookings[id] = b
	return true, nil
}

func (s *MemoryStore) due(status string, boundary func(models.Booking) time.Time, now time.Time, afterID uint, limit int) []models.Booking {
	list := []models.Booking{}
	for _, b := range s.st.bookings {
		if b.Status == status && b.ID > afterID && !boundary(b).After(now) {
			list = append(list, s.hydrate(b))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

func (s *MemoryStore) DueForCheckIn(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Booking, error) {
	defer s.lock()()
	return s.due(models.BookingStatusConfirmed, func(b models.Booking) time.Time { return b.CheckIn }, now, afterID, limit), nil
}

func (s *MemoryStore) DueForCheckOut(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Booking, error) {
	defer s.lock()()
	return s.due(models.BookingStatusCheckedIn, func(b models.Booking) time.Time { return b.CheckOut }, now, afterID, limit), nil
}

// ----------------------------------------------------
// Booking events
// ----------------------------------------------------

func (s *MemoryStore) RecordBookingEvent(ctx context.Context, e *models.BookingEvent) error {
	defer s.lock()()
	e.ID = s.st.nextID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.st.events = append(s.st.events, *e)
	return nil
}

func (s *MemoryStore) ListBookingEvents(ctx context.Context, bookingID uint) ([]models.BookingEvent, error) {
	defer s.lock()()
	list := []models.BookingEvent{}
	for _, e := range s.st.events {
		if e.BookingID == bookingID {
			list = append(list, e)
		}
	}
	return list, nil
}

// ----------------------------------------------------
// Maintenance alerts
// ----------------------------------------------------

func (s *MemoryStore) GetAlert(ctx context.Context, id uint) (*models.MaintenanceAlert, error) {
	defer s.lock()()
	a, ok := s.st.alerts[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Room = s.st.rooms[a.RoomID]
	return &a, nil
}

func (s *MemoryStore) ListAlerts(ctx context.Context, propertyID uint, status string) ([]models.MaintenanceAlert, error) {
	defer s.lock()()
	list := []models.MaintenanceAlert{}
	for _, a := range s.st.alerts {
		if a.PropertyID != propertyID || (status != "" && a.Status != status) {
			continue
		}
		a.Room = s.st.rooms[a.RoomID]
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (s *MemoryStore) CreateAlert(ctx context.Context, a *models.MaintenanceAlert) error {
	defer s.lock()()
	a.ID = s.st.nextID()
	a.CreatedAt, a.UpdatedAt = time.Now(), time.Now()
	stored := *a
	stored.Room = models.Room{}
	s.st.alerts[a.ID] = stored
	return nil
}

func (s *MemoryStore) SaveAlert(ctx context.Context, a *models.MaintenanceAlert) error {
	defer s.lock()()
	if _, ok := s.st.alerts[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now()
	stored := *a
	stored.Room = models.Room{}
	s.st.alerts[a.ID] = stored
	return nil
}

func (s *MemoryStore) CountUnresolvedAlerts(ctx context.Context, roomID uint) (int64, error) {
	defer s.lock()()
	var n int64
	for _, a := range s.st.alerts {
		if a.RoomID == roomID && a.Status != models.AlertStatusResolved {
			n++
		}
	}
	return n, nil
}

// ----------------------------------------------------
// Staff
// ----------------------------------------------------

func (s *MemoryStore) FindStaffByUsername(ctx context.Context, username string) (*models.Staff, error) {
	defer s.lock()()
	username = strings.TrimSpace(username)
	for _, st := range s.st.staff {
		if st.Username == username {
			return &st, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateStaff(ctx context.Context, st *models.Staff) error {
	defer s.lock()()
	for _, other := range s.st.staff {
		if other.Username == st.Username {
			return ErrDuplicate
		}
	}
	st.ID = s.st.nextID()
	st.CreatedAt, st.UpdatedAt = time.Now(), time.Now()
	s.st.staff[st.ID] = *st
	return nil
}

var _ Store = (*MemoryStore)(nil)
