package config

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"hotel-ops/models"
	"hotel-ops/repository"
)

var seedRoomTypes = []struct {
	Name  string
	Price float64
}{
	{"Standard", 100},
	{"Deluxe", 150},
	{"Suite", 250},
	{"Family", 200},
}

var seedStaff = []struct {
	Username string
	FullName string
	Role     string
	Password string
}{
	{"admin", "Admin User", models.RoleAdmin, "admin123"},
	{"frontdesk", "Front Desk", models.RoleFrontdesk, "frontdesk123"},
	{"housekeeping", "Housekeeping", models.RoleHousekeeping, "housekeeping123"},
	{"maintenance", "Maintenance", models.RoleMaintenance, "maintenance123"},
}

// SeedDatabase creates a demo property with rooms 101-305 and one staff
// account per role. It does nothing once a property exists.
func SeedDatabase(store repository.Store) error {
	ctx := context.Background()

	props, err := store.ListProperties(ctx)
	if err != nil {
		return fmt.Errorf("seed: list properties: %w", err)
	}
	if len(props) > 0 {
		log.Println("Properties already seeded")
		return nil
	}

	return store.Transaction(ctx, func(tx repository.Store) error {
		prop := models.Property{
			Name:     "Grand Hotel",
			Address:  "123 Main Street",
			Phone:    "+1 555 0100",
			Email:    "info@grandhotel.example",
			Timezone: EnvOrDefault("DEFAULT_TIMEZONE", "UTC"),
		}
		if err := tx.CreateProperty(ctx, &prop); err != nil {
			return fmt.Errorf("seed: create property: %w", err)
		}

		for floor := 1; floor <= 3; floor++ {
			for n := 1; n <= 5; n++ {
				rt := seedRoomTypes[(n-1)%len(seedRoomTypes)]
				room := models.Room{
					PropertyID: prop.ID,
					RoomNumber: fmt.Sprintf("%d%02d", floor, n),
					Type:       rt.Name,
					Floor:      floor,
					Price:      rt.Price,
					Status:     models.RoomStatusReady,
				}
				if err := tx.CreateRoom(ctx, &room); err != nil {
					return fmt.Errorf("seed: create room %s: %w", room.RoomNumber, err)
				}
			}
		}
		log.Println("Rooms seeded")

		for _, st := range seedStaff {
			if _, err := tx.FindStaffByUsername(ctx, st.Username); err == nil {
				continue
			} else if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("seed: look up staff %s: %w", st.Username, err)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(st.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("seed: hash password: %w", err)
			}
			propID := prop.ID
			if err := tx.CreateStaff(ctx, &models.Staff{
				FullName:   st.FullName,
				Username:   st.Username,
				Password:   string(hash),
				Role:       st.Role,
				PropertyID: &propID,
			}); err != nil {
				return fmt.Errorf("seed: create staff %s: %w", st.Username, err)
			}
		}
		log.Println("Staff seeded")
		return nil
	})
}
