package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-ops/models"
	"hotel-ops/repository"
)

type PropertyService struct {
	Store repository.Store
}

func NewPropertyService(store repository.Store) *PropertyService {
	return &PropertyService{Store: store}
}

type PropertyInput struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	Timezone string
}

func validateProperty(in *PropertyInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Timezone = strings.TrimSpace(in.Timezone)
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if in.Timezone != "" {
		if _, err := time.LoadLocation(in.Timezone); err != nil {
			return invalid("timezone", "unknown timezone %q", in.Timezone)
		}
	}
	return nil
}

func (s *PropertyService) List(ctx context.Context) ([]models.Property, error) {
	list, err := s.Store.ListProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return list, nil
}

func (s *PropertyService) Get(ctx context.Context, id uint) (*models.Property, error) {
	p, err := s.Store.GetProperty(ctx, id)
	if err != nil {
		return nil, notFound(err, "property", id)
	}
	return p, nil
}

func (s *PropertyService) Create(ctx context.Context, in PropertyInput) (*models.Property, error) {
	if err := validateProperty(&in); err != nil {
		return nil, err
	}
	p := models.Property{
		Name:     in.Name,
		Address:  strings.TrimSpace(in.Address),
		Phone:    strings.TrimSpace(in.Phone),
		Email:    strings.TrimSpace(in.Email),
		Timezone: in.Timezone,
	}
	if err := s.Store.CreateProperty(ctx, &p); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	return &p, nil
}

// Update changes the property's details. Changing the timezone does not
// move stored stay instants.
func (s *PropertyService) Update(ctx context.Context, id uint, in PropertyInput) (*models.Property, error) {
	if err := validateProperty(&in); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = in.Name
	p.Address = strings.TrimSpace(in.Address)
	p.Phone = strings.TrimSpace(in.Phone)
	p.Email = strings.TrimSpace(in.Email)
	p.Timezone = in.Timezone
	if err := s.Store.SaveProperty(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update property %d: %w", id, err)
	}
	return p, nil
}
