package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"hotel-ops/events"
	"hotel-ops/models"
	"hotel-ops/repository"
)

// MaintenanceService tracks room issues. Opening an alert takes the room
// out of service; resolving the last open alert sends it to cleaning.
type MaintenanceService struct {
	Bookings *BookingService
}

func NewMaintenanceService(bookings *BookingService) *MaintenanceService {
	return &MaintenanceService{Bookings: bookings}
}

type AlertInput struct {
	RoomID     uint
	Issue      string
	ReportedBy string
}

func isAlertStatus(s string) bool {
	switch s {
	case models.AlertStatusOpen, models.AlertStatusInProgress, models.AlertStatusResolved:
		return true
	}
	return false
}

func (s *MaintenanceService) List(ctx context.Context, propertyID uint, status string) ([]models.MaintenanceAlert, error) {
	status = strings.TrimSpace(status)
	if status != "" && !isAlertStatus(status) {
		return nil, invalid("status", "unknown alert status %q", status)
	}
	list, err := s.Bookings.Store.ListAlerts(ctx, propertyID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return list, nil
}

func (s *MaintenanceService) Open(ctx context.Context, propertyID uint, in AlertInput) (*models.MaintenanceAlert, error) {
	in.Issue = strings.TrimSpace(in.Issue)
	if in.RoomID == 0 {
		return nil, invalid("room_id", "is required")
	}
	if in.Issue == "" {
		return nil, invalid("issue", "is required")
	}

	now := s.Bookings.now()
	var alert models.MaintenanceAlert
	var moved bool
	err := s.Bookings.Store.Transaction(ctx, func(tx repository.Store) error {
		rooms, err := lockPropertyRooms(ctx, tx, propertyID, []uint{in.RoomID})
		if err != nil {
			return err
		}
		alert = models.MaintenanceAlert{
			PropertyID: propertyID,
			RoomID:     in.RoomID,
			Issue:      in.Issue,
			ReportedBy: strings.TrimSpace(in.ReportedBy),
			Status:     models.AlertStatusOpen,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.CreateAlert(ctx, &alert); err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}
		if rooms[in.RoomID].Status != models.RoomStatusMaintenance {
			moved = true
			return tx.SetRoomStatus(ctx, []uint{in.RoomID}, models.RoomStatusMaintenance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🔧 maintenance alert %d opened for room %d", alert.ID, alert.RoomID)
	if moved {
		s.publishRoom(ctx, propertyID, in.RoomID, models.RoomStatusMaintenance)
	}
	return &alert, nil
}

// SetStatus updates an alert. When the room's last unresolved alert is
// resolved the room goes to cleaning, unless staff already moved it.
func (s *MaintenanceService) SetStatus(ctx context.Context, propertyID, alertID uint, status string) (*models.MaintenanceAlert, error) {
	status = strings.TrimSpace(status)
	if !isAlertStatus(status) {
		return nil, invalid("status", "unknown alert status %q", status)
	}

	now := s.Bookings.now()
	var alert *models.MaintenanceAlert
	var moved bool
	err := s.Bookings.Store.Transaction(ctx, func(tx repository.Store) error {
		a, err := tx.GetAlert(ctx, alertID)
		if err != nil {
			return notFound(err, "alert", alertID)
		}
		if a.PropertyID != propertyID {
			return &NotFoundError{Entity: "alert", ID: alertID}
		}
		alert = a
		if a.Status == status {
			return nil
		}

		rooms, err := lockPropertyRooms(ctx, tx, propertyID, []uint{a.RoomID})
		if err != nil {
			return err
		}

		a.Status = status
		a.UpdatedAt = now
		a.ResolvedAt = nil
		if status == models.AlertStatusResolved {
			a.ResolvedAt = &now
		}
		if err := tx.SaveAlert(ctx, a); err != nil {
			return fmt.Errorf("failed to update alert %d: %w", alertID, err)
		}

		if status != models.AlertStatusResolved {
			return nil
		}
		remaining, err := tx.CountUnresolvedAlerts(ctx, a.RoomID)
		if err != nil {
			return fmt.Errorf("failed to count alerts of room %d: %w", a.RoomID, err)
		}
		if remaining == 0 && rooms[a.RoomID].Status == models.RoomStatusMaintenance {
			moved = true
			return tx.SetRoomStatus(ctx, []uint{a.RoomID}, models.RoomStatusCleaning)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if moved {
		s.publishRoom(ctx, propertyID, alert.RoomID, models.RoomStatusCleaning)
	}
	return alert, nil
}

func (s *MaintenanceService) publishRoom(ctx context.Context, propertyID, roomID uint, status string) {
	s.Bookings.publish(ctx, []events.Message{{
		Type:       events.TypeRoomStatusChanged,
		PropertyID: propertyID,
		RoomIDs:    []uint{roomID},
		To:         status,
		Source:     models.EventSourceManual,
		OccurredAt: s.Bookings.now(),
	}})
}
