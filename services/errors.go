package services

import (
	"errors"
	"fmt"

	"hotel-ops/repository"
)

// ValidationError is a field level rejection raised before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError names the room that cannot be booked and the booking
// currently holding it.
type ConflictError struct {
	RoomID               uint
	ConflictingBookingID uint
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %d is already booked by booking %d for the requested dates", e.RoomID, e.ConflictingBookingID)
}

type TransitionError struct {
	Entity string
	From   string
	To     string
	// Stale is set when another writer moved the entity after it was loaded.
	Stale bool
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

// notFound converts repository.ErrNotFound into a NotFoundError and leaves
// other errors wrapped with context.
func notFound(err error, entity string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("failed to load %s %d: %w", entity, id, err)
}
