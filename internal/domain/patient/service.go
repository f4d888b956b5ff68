package patient

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/amat/amat/internal/platform/auth"
)

var (
	// ErrNotFound is returned when no patient matches the lookup.
	ErrNotFound = errors.New("patient not found")
	// ErrDuplicateIdentity is returned when a name, email or phone number
	// collides with an existing registration.
	ErrDuplicateIdentity = errors.New("patient already registered")
	// ErrInvalidCredential is returned on a password mismatch.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrValidation is returned when a request is missing or malformed fields.
	ErrValidation = errors.New("invalid patient input")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ProfileUpdate carries the fields a self-service or administrative update
// may change. Empty fields leave the stored value untouched.
type ProfileUpdate struct {
	Name                  string `json:"name"`
	DOB                   string `json:"dob"`
	Gender                string `json:"gender"`
	Email                 string `json:"email"`
	PhoneNumber           string `json:"phonenumber"`
	Address               string `json:"address"`
	Town                  string `json:"town"`
	Country               string `json:"country"`
	Education             string `json:"education"`
	Occupation            string `json:"occupation"`
	Religion              string `json:"religion"`
	MaritalStatus         string `json:"maritalStatus"`
	PreexistingConditions string `json:"preexisting_conditions"`
	CurrentMedications    string `json:"current_medications"`
}

// Service implements patient registration, login and profile management.
type Service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository, bcryptCost int) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

// Register validates the signup payload, enforces identity uniqueness and
// stores the patient with a hashed password.
func (s *Service) Register(ctx context.Context, p *Patient, password string) error {
	if p.Name == "" || p.Email == "" || p.PhoneNumber == "" || password == "" {
		return fmt.Errorf("%w: name, email, phonenumber and password are required", ErrValidation)
	}
	if !emailPattern.MatchString(p.Email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}

	// Duplicate checks run in a fixed order so the caller gets the most
	// specific message first.
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

// Authenticate verifies the email and password pair. A missing account and a
// bad password surface as distinct errors.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Patient, error) {
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

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateProfile applies the non-empty fields of u to the stored record.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, u ProfileUpdate) (*Patient, error) {
	if u.Email != "" && !emailPattern.MatchString(u.Email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProfile(p, u)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func applyProfile(p *Patient, u ProfileUpdate) {
	if u.Name != "" {
		p.Name = u.Name
	}
	if u.Email != "" {
		p.Email = u.Email
	}
	if u.PhoneNumber != "" {
		p.PhoneNumber = u.PhoneNumber
	}
	setOpt(&p.DOB, u.DOB)
	setOpt(&p.Gender, u.Gender)
	setOpt(&p.Address, u.Address)
	setOpt(&p.Town, u.Town)
	setOpt(&p.Country, u.Country)
	setOpt(&p.Education, u.Education)
	setOpt(&p.Occupation, u.Occupation)
	setOpt(&p.Religion, u.Religion)
	setOpt(&p.MaritalStatus, u.MaritalStatus)
	setOpt(&p.PreexistingConditions, u.PreexistingConditions)
	setOpt(&p.CurrentMedications, u.CurrentMedications)
}

func setOpt(dst **string, v string) {
	if v != "" {
		val := v
		*dst = &val
	}
}
