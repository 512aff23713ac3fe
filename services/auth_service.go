package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"hotel-ops/models"
	"hotel-ops/repository"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthService struct {
	Store repository.Store
}

func NewAuthService(store repository.Store) *AuthService {
	return &AuthService{Store: store}
}

// Authenticate checks a staff member's password against the stored bcrypt
// hash.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Staff, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	st, err := s.Store.FindStaffByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(st.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return st, nil
}

// HashPassword is used when seeding staff accounts.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
