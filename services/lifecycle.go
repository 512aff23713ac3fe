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

var bookingTransitions = map[string][]string{
	models.BookingStatusConfirmed: {models.BookingStatusCheckedIn, models.BookingStatusCancelled},
	models.BookingStatusCheckedIn: {models.BookingStatusCheckedOut},
}

func canTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// applyTransition moves b to status `to` inside tx. The update is
// conditional on b still being in its loaded status. When a concurrent
// writer got there first the call is a no-op if the booking already sits in
// `to`, and a stale TransitionError otherwise. Checking out puts every
// booked room into cleaning.
func (s *BookingService) applyTransition(ctx context.Context, tx repository.Store, b *models.Booking, to, source string, at time.Time) ([]events.Message, error) {
	from := b.Status
	if !canTransition(from, to) {
		return nil, &TransitionError{Entity: "booking", From: from, To: to}
	}

	changed, err := tx.TransitionBooking(ctx, b.ID, from, to, at)
	if err != nil {
		return nil, fmt.Errorf("failed to move booking %d to %s: %w", b.ID, to, err)
	}
	if !changed {
		current, err := tx.GetBooking(ctx, b.ID)
		if err != nil {
			return nil, notFound(err, "booking", b.ID)
		}
		if current.Status == to {
			b.Status = to
			return nil, nil
		}
		return nil, &TransitionError{Entity: "booking", From: current.Status, To: to, Stale: true}
	}
	b.Status = to

	roomIDs := b.RoomIDs()
	msgs := []events.Message{{
		Type:       events.TypeBookingStatusChanged,
		PropertyID: b.PropertyID,
		BookingID:  b.ID,
		RoomIDs:    roomIDs,
		From:       from,
		To:         to,
		Source:     source,
		OccurredAt: at,
	}}

	if to == models.BookingStatusCheckedOut && len(roomIDs) > 0 {
		if err := tx.SetRoomStatus(ctx, roomIDs, models.RoomStatusCleaning); err != nil {
			return nil, fmt.Errorf("failed to mark rooms of booking %d for cleaning: %w", b.ID, err)
		}
		msgs = append(msgs, events.Message{
			Type:       events.TypeRoomStatusChanged,
			PropertyID: b.PropertyID,
			BookingID:  b.ID,
			RoomIDs:    roomIDs,
			To:         models.RoomStatusCleaning,
			Source:     source,
			OccurredAt: at,
		})
	}

	if err := tx.RecordBookingEvent(ctx, &models.BookingEvent{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		FromStatus: from,
		ToStatus:   to,
		Source:     source,
		CreatedAt:  at,
	}); err != nil {
		return nil, fmt.Errorf("failed to record booking event: %w", err)
	}
	return msgs, nil
}

// TransitionBookingStatus is the staff-initiated status change. Asking for
// the status the booking already has is a no-op.
func (s *BookingService) TransitionBookingStatus(ctx context.Context, propertyID, bookingID uint, to string) (*models.Booking, error) {
	to = strings.TrimSpace(to)
	if !models.IsBookingStatus(to) {
		return nil, invalid("status", "unknown booking status %q", to)
	}
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
		if b.Status == to {
			return nil
		}
		pending, err = s.applyTransition(ctx, tx, b, to, models.EventSourceManual, now)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publish(ctx, pending)
	if len(pending) > 0 {
		log.Printf("🔁 booking %d moved to %s", bookingID, to)
	}
	return s.Store.GetBooking(ctx, bookingID)
}

// SweepResult lists what one sweep run did, by booking id.
type SweepResult struct {
	CheckedIn  []uint `json:"checkedIn"`
	CheckedOut []uint `json:"checkedOut"`
	Failed     []uint `json:"failed"`
}

type dueQuery func(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Booking, error)

// RunStatusSweep checks in every confirmed booking whose check-in has been
// reached, then checks out every checked-in booking whose check-out has
// been reached. A booking due for both moves through both in one run. Each
// booking commits on its own; one failing booking is logged and skipped.
func (s *BookingService) RunStatusSweep(ctx context.Context, now time.Time) (SweepResult, error) {
	res := SweepResult{CheckedIn: []uint{}, CheckedOut: []uint{}, Failed: []uint{}}

	checkedIn, failed, err := s.sweepPhase(ctx, now, s.Store.DueForCheckIn, models.BookingStatusCheckedIn)
	res.CheckedIn = append(res.CheckedIn, checkedIn...)
	res.Failed = append(res.Failed, failed...)
	if err != nil {
		return res, err
	}

	checkedOut, failed, err := s.sweepPhase(ctx, now, s.Store.DueForCheckOut, models.BookingStatusCheckedOut)
	res.CheckedOut = append(res.CheckedOut, checkedOut...)
	res.Failed = append(res.Failed, failed...)
	if err != nil {
		return res, err
	}

	if len(res.CheckedIn)+len(res.CheckedOut)+len(res.Failed) > 0 {
		log.Printf("🧹 sweep: %d checked in, %d checked out, %d failed", len(res.CheckedIn), len(res.CheckedOut), len(res.Failed))
	}
	return res, nil
}

func (s *BookingService) sweepPhase(ctx context.Context, now time.Time, query dueQuery, to string) (done, failed []uint, err error) {
	limit := s.SweepBatchSize
	if limit <= 0 {
		limit = 50
	}

	var afterID uint
	for {
		if err := ctx.Err(); err != nil {
			return done, failed, err
		}
		batch, err := query(ctx, now, afterID, limit)
		if err != nil {
			return done, failed, fmt.Errorf("failed to load bookings due for %s: %w", to, err)
		}
		if len(batch) == 0 {
			return done, failed, nil
		}

		for i := range batch {
			b := batch[i]
			afterID = b.ID

			var pending []events.Message
			txErr := s.Store.Transaction(ctx, func(tx repository.Store) error {
				msgs, err := s.applyTransition(ctx, tx, &b, to, models.EventSourceSweep, now)
				pending = msgs
				return err
			})
			var terr *TransitionError
			switch {
			case errors.As(txErr, &terr) && terr.Stale:
				log.Printf("ℹ️ sweep skipped booking %d: already %s", b.ID, terr.From)
				continue
			case txErr != nil:
				log.Printf("❌ sweep could not move booking %d to %s: %v", b.ID, to, txErr)
				failed = append(failed, b.ID)
				continue
			case len(pending) == 0:
				// Another sweep already applied it.
				continue
			}
			s.publish(ctx, pending)
			done = append(done, b.ID)
		}

		if len(batch) < limit {
			return done, failed, nil
		}
	}
}
