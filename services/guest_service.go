package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"hotel-ops/models"
	"hotel-ops/repository"
)

type GuestService struct {
	Store repository.Store
}

func NewGuestService(store repository.Store) *GuestService {
	return &GuestService{Store: store}
}

// ----------------------------------------------------
// LIST / GET
// ----------------------------------------------------
func (s *GuestService) List(ctx context.Context, propertyID uint, search string) ([]models.Guest, error) {
	guests, err := s.Store.ListGuests(ctx, propertyID, strings.TrimSpace(search))
	if err != nil {
		log.Printf("⬅️ GuestService.List error: %v", err)
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	return guests, nil
}

func (s *GuestService) Get(ctx context.Context, propertyID, guestID uint) (*models.Guest, error) {
	g, err := s.Store.GetGuest(ctx, guestID)
	if err != nil {
		return nil, notFound(err, "guest", guestID)
	}
	if g.PropertyID != propertyID {
		return nil, &NotFoundError{Entity: "guest", ID: guestID}
	}
	return g, nil
}

// ----------------------------------------------------
// UPDATE
// Contact details only. Bookings keep pointing at the same guest row.
// ----------------------------------------------------
func (s *GuestService) Update(ctx context.Context, propertyID, guestID uint, in GuestInput) (*models.Guest, error) {
	if err := validateGuest(in); err != nil {
		return nil, err
	}
	g, err := s.Get(ctx, propertyID, guestID)
	if err != nil {
		return nil, err
	}

	g.FullName = strings.TrimSpace(in.Name)
	g.Email = strings.ToLower(strings.TrimSpace(in.Email))
	g.Phone = strings.TrimSpace(in.Phone)
	if err := s.Store.SaveGuest(ctx, g); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("guest.email", "another guest already uses %s", g.Email)
		}
		return nil, fmt.Errorf("failed to update guest %d: %w", guestID, err)
	}
	log.Printf("⬅️ GuestService.Update ok: guest_id=%d", g.ID)
	return g, nil
}
