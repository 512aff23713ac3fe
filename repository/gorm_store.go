package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-ops/models"
)

// GormStore implements Store on top of a gorm connection (MySQL or Postgres).
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// translate maps driver level errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	var merr *mysqldriver.MySQLError
	if errors.As(err, &merr) && merr.Number == 1062 {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

// ----------------------------------------------------
// Properties
// ----------------------------------------------------

func (s *GormStore) ListProperties(ctx context.Context) ([]models.Property, error) {
	var list []models.Property
	err := s.db(ctx).Order("id ASC").Find(&list).Error
	return list, translate(err)
}

func (s *GormStore) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	var p models.Property
	if err := s.db(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) CreateProperty(ctx context.Context, p *models.Property) error {
	return translate(s.db(ctx).Create(p).Error)
}

func (s *GormStore) SaveProperty(ctx context.Context, p *models.Property) error {
	return translate(s.db(ctx).Save(p).Error)
}

// ----------------------------------------------------
// Rooms
// ----------------------------------------------------

func (s *GormStore) GetRoom(ctx context.Context, id uint) (*models.Room, error) {
	var r models.Room
	if err := s.db(ctx).First(&r, id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *GormStore) ListRooms(ctx context.Context, propertyID uint, f RoomFilter) ([]models.Room, error) {
	q := s.db(ctx).Where("property_id = ?", propertyID)
	if t := strings.TrimSpace(f.Type); t != "" {
		q = q.Where("LOWER(type) = ?", strings.ToLower(t))
	}
	if f.Floor != nil {
		q = q.Where("floor = ?", *f.Floor)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		like := "%" + search + "%"
		q = q.Where("(LOWER(room_number) LIKE ? OR LOWER(type) LIKE ?)", like, like)
	}

	var rooms []models.Room
	err := q.Order("floor ASC, room_number ASC").Find(&rooms).Error
	return rooms, translate(err)
}

func (s *GormStore) LockRooms(ctx context.Context, ids []uint) ([]models.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rooms []models.Room
	// ordered by id so concurrent writers acquire row locks in the same order
	err := s.db(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rooms).Error
	return rooms, translate(err)
}

func (s *GormStore) CreateRoom(ctx context.Context, r *models.Room) error {
	return translate(s.db(ctx).Create(r).Error)
}

func (s *GormStore) SaveRoom(ctx context.Context, r *models.Room) error {
	return translate(s.db(ctx).Save(r).Error)
}

func (s *GormStore) SetRoomStatus(ctx context.Context, ids []uint, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(s.db(ctx).
		Model(&models.Room{}).
		Where("id IN ?", ids).
		Update("status", status).Error)
}

// ----------------------------------------------------
// Guests
// ----------------------------------------------------

func (s *GormStore) GetGuest(ctx context.Context, id uint) (*models.Guest, error) {
	var g models.Guest
	if err := s.db(ctx).First(&g, id).Error; err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

func (s *GormStore) FindGuestByEmail(ctx context.Context, propertyID uint, email string) (*models.Guest, error) {
	var g models.Guest
	err := s.db(ctx).
		Where("property_id = ? AND email = ?", propertyID, strings.ToLower(strings.TrimSpace(email))).
		First(&g).Error
	if err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

func (s *GormStore) ListGuests(ctx context.Context, propertyID uint, search string) ([]models.Guest, error) {
	q := s.db(ctx).Where("property_id = ?", propertyID)
	if search = strings.ToLower(strings.TrimSpace(search)); search != "" {
		like := "%" + search + "%"
		q = q.Where("(LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}
	var guests []models.Guest
	err := q.Order("id DESC").Find(&guests).Error
	return guests, translate(err)
}

func (s *GormStore) CreateGuest(ctx context.Context, g *models.Guest) error {
	return translate(s.db(ctx).Create(g).Error)
}

func (s *GormStore) SaveGuest(ctx context.Context, g *models.Guest) error {
	return translate(s.db(ctx).Save(g).Error)
}

// ----------------------------------------------------
// Bookings
// ----------------------------------------------------

func (s *GormStore) withRelations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Guest").
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Rooms.Room")
}

func (s *GormStore) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := s.withRelations(s.db(ctx)).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *GormStore) ListBookings(ctx context.Context, propertyID uint, f BookingFilter) ([]models.Booking, error) {
	q := s.db(ctx).Where("property_id = ?", propertyID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("check_out > ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("check_in < ?", *f.To)
	}

	var list []models.Booking
	if err := s.withRelations(q).Order("check_in ASC, id ASC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	for i := range list {
		if list[i].Rooms == nil {
			list[i].Rooms = []models.BookedRoom{}
		}
	}
	return list, nil
}

func (s *GormStore) createLineItems(db *gorm.DB, b *models.Booking) error {
	if len(b.Rooms) == 0 {
		return nil
	}
	for i := range b.Rooms {
		b.Rooms[i].ID = 0
		b.Rooms[i].BookingID = b.ID
	}
	return db.Omit(clause.Associations).Create(&b.Rooms).Error
}

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	db := s.db(ctx)
	if err := db.Omit(clause.Associations).Create(b).Error; err != nil {
		return translate(err)
	}
	return translate(s.createLineItems(db, b))
}

func (s *GormStore) SaveBooking(ctx context.Context, b *models.Booking) error {
	db := s.db(ctx)
	if err := db.Omit(clause.Associations).Save(b).Error; err != nil {
		return translate(err)
	}
	if err := db.Where("booking_id = ?", b.ID).Delete(&models.BookedRoom{}).Error; err != nil {
		return translate(err)
	}
	return translate(s.createLineItems(db, b))
}

func (s *GormStore) DeleteBooking(ctx context.Context, id uint) error {
	db := s.db(ctx)
	if err := db.Where("booking_id = ?", id).Delete(&models.BookedRoom{}).Error; err != nil {
		return translate(err)
	}
	if err := db.Where("booking_id = ?", id).Delete(&models.BookingEvent{}).Error; err != nil {
		return translate(err)
	}
	res := db.Delete(&models.Booking{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) OverlappingBookings(ctx context.Context, roomID uint, start, end time.Time, excludeBookingID uint) ([]models.Booking, error) {
	q := s.db(ctx).
		Where("bookings.status IN ?", models.OccupyingStatuses).
		Where("bookings.check_in < ? AND bookings.check_out > ?", end, start).
		Where("EXISTS (SELECT 1 FROM booked_rooms br WHERE br.booking_id = bookings.id AND br.room_id = ?)", roomID)
	if excludeBookingID != 0 {
		q = q.Where("bookings.id <> ?", excludeBookingID)
	}

	var list []models.Booking
	err := q.Order("bookings.check_in ASC, bookings.id ASC").Find(&list).Error
	return list, translate(err)
}

func (s *GormStore) OccupiedRoomIDs(ctx context.Context, propertyID uint, start, end time.Time) ([]uint, error) {
	var ids []uint
	err := s.db(ctx).
		Model(&models.BookedRoom{}).
		Joins("JOIN bookings ON bookings.id = booked_rooms.booking_id").
		Where("bookings.property_id = ?", propertyID).
		Where("bookings.status IN ?", models.OccupyingStatuses).
		Where("bookings.check_in < ? AND bookings.check_out > ?", end, start).
		Distinct().
		Pluck("booked_rooms.room_id", &ids).Error
	return ids, translate(err)
}

func (s *GormStore) TransitionBooking(ctx context.Context, id uint, from, to string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case models.BookingStatusCheckedIn:
		updates["checked_in_at"] = at
	case models.BookingStatusCheckedOut:
		updates["checked_out_at"] = at
	case models.BookingStatusCancelled:
		updates["cancelled_at"] = at
	}

	res := s.db(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) due(ctx context.Context, status, column string, now time.Time, afterID uint, limit int) ([]models.Booking, error) {
	var list []models.Booking
	err := s.db(ctx).
		Preload("Rooms").
		Where("status = ? AND "+column+" <= ? AND id > ?", status, now, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&list).Error
	return list, translate(err)
}

func (s *GormStore) DueForCheckIn(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Booking, error) {
	return s.due(ctx, models.BookingStatusConfirmed, "check_in", now, afterID, limit)
}

func (s *GormStore) DueForCheckOut(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Booking, error) {
	return s.due(ctx, models.BookingStatusCheckedIn, "check_out", now, afterID, limit)
}

// ----------------------------------------------------
// Booking events
// ----------------------------------------------------

func (s *GormStore) RecordBookingEvent(ctx context.Context, e *models.BookingEvent) error {
	return translate(s.db(ctx).Create(e).Error)
}

func (s *GormStore) ListBookingEvents(ctx context.Context, bookingID uint) ([]models.BookingEvent, error) {
	var list []models.BookingEvent
	err := s.db(ctx).Where("booking_id = ?", bookingID).Order("id ASC").Find(&list).Error
	return list, translate(err)
}

// ----------------------------------------------------
// Maintenance alerts
// ----------------------------------------------------

func (s *GormStore) GetAlert(ctx context.Context, id uint) (*models.MaintenanceAlert, error) {
	var a models.MaintenanceAlert
	if err := s.db(ctx).Preload("Room").First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *GormStore) ListAlerts(ctx context.Context, propertyID uint, status string) ([]models.MaintenanceAlert, error) {
	q := s.db(ctx).Preload("Room").Where("property_id = ?", propertyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.MaintenanceAlert
	err := q.Order("created_at DESC, id DESC").Find(&list).Error
	return list, translate(err)
}

func (s *GormStore) CreateAlert(ctx context.Context, a *models.MaintenanceAlert) error {
	return translate(s.db(ctx).Omit(clause.Associations).Create(a).Error)
}

func (s *GormStore) SaveAlert(ctx context.Context, a *models.MaintenanceAlert) error {
	return translate(s.db(ctx).Omit(clause.Associations).Save(a).Error)
}

func (s *GormStore) CountUnresolvedAlerts(ctx context.Context, roomID uint) (int64, error) {
	var n int64
	err := s.db(ctx).
		Model(&models.MaintenanceAlert{}).
		Where("room_id = ? AND status <> ?", roomID, models.AlertStatusResolved).
		Count(&n).Error
	return n, translate(err)
}

// ----------------------------------------------------
// Staff
// ----------------------------------------------------

func (s *GormStore) FindStaffByUsername(ctx context.Context, username string) (*models.Staff, error) {
	var st models.Staff
	if err := s.db(ctx).Where("username = ?", strings.TrimSpace(username)).First(&st).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

func (s *GormStore) CreateStaff(ctx context.Context, st *models.Staff) error {
	return translate(s.db(ctx).Create(st).Error)
}

var _ Store = (*GormStore)(nil)
