package practitioner

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/amat/amat/internal/platform/auth"
)

var (
	// ErrNotFound is returned when no practitioner matches the lookup.
	ErrNotFound = errors.New("practitioner not found")
	// ErrDuplicateIdentity is returned when a name, email or phone number
	// collides with an existing registration.
	ErrDuplicateIdentity = errors.New("practitioner already registered")
	// ErrInvalidCredential is returned on a password mismatch.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrInvalidRole is returned when the signup role is not doctor or nurse.
	ErrInvalidRole = errors.New("role must be doctor or nurse")
	// ErrValidation is returned when a request is missing or malformed fields.
	ErrValidation = errors.New("invalid practitioner input")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service implements practitioner registration, login and directory listings.
type Service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository, bcryptCost int) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

// Register validates the signup payload. The role string must name one of
// the practitioner roles; anything else is rejected before any writes.
func (s *Service) Register(ctx context.Context, p *Practitioner, roleName, password string) error {
	if p.Name == "" || p.Email == "" || p.PhoneNumber == "" || password == "" {
		return fmt.Errorf("%w: name, email, phonenumber and password are required", ErrValidation)
	}
	if !emailPattern.MatchString(p.Email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	role, ok := auth.PractitionerRole(roleName)
	if !ok {
		return ErrInvalidRole
	}
	p.Role = role

	taken, err := s.repo.ExistsByNameAndContact(ctx, p.Name, p.Email, p.PhoneNumber)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: name already in use", ErrDuplicateIdentity)
	}
	taken, err = s.repo.ExistsByEmail(ctx, p.Email)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: email already in use", ErrDuplicateIdentity)
	}
	taken, err = s.repo.ExistsByPhone(ctx, p.PhoneNumber)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: phone number already in use", ErrDuplicateIdentity)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	return s.repo.Create(ctx, p)
}

// Authenticate verifies the email and password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Practitioner, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(p.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredential
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByRole(ctx context.Context, role auth.Role, limit, offset int) ([]*Practitioner, int, error) {
	return s.repo.ListByRole(ctx, role, limit, offset)
}

// RoleByID resolves a practitioner's role for the authorization middleware.
// It satisfies auth.PractitionerDirectory.
func (s *Service) RoleByID(ctx context.Context, id uuid.UUID) (auth.Role, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}
