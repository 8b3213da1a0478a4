package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/medifed/portal/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserExists is returned when registering an already-taken username.
	ErrUserExists = errors.New("username already registered")
	// ErrInvalidCredentials covers both unknown-user and wrong-password so
	// callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service encapsulates account management and credential verification
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// Register creates a patient account with a bcrypt-hashed password.
// Duplicate usernames are rejected before hitting the unique index so the
// failure mode does not depend on driver error mapping.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RolePatient,
	}
	return s.repo.Create(ctx, u)
}

// Authenticate verifies a username/password pair. Username match is exact
// and case-sensitive; the returned error is uniform across unknown user
// and bad password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureFederated returns the account for a verified federated email,
// provisioning a patient account with an unguessable random password when
// none exists. The password is never surfaced: such accounts only ever
// log in through the federated path.
func (s *Service) EnsureFederated(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}
	pw, err := randomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, &models.User{
		Username:     email,
		PasswordHash: string(hash),
		Role:         models.RolePatient,
	})
	if err == ErrUserExists {
		// concurrent federated first-login for the same email
		return s.repo.GetByUsername(ctx, email)
	}
	return created, err
}

// SeedDoctor creates (or returns) a doctor account. This is the only
// role-doctor producer in the application.
func (s *Service) SeedDoctor(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleDoctor,
	})
}

// GetByID loads an account by its identifier; nil when missing.
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func randomPassword() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
