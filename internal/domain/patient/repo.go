package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository abstracts patient persistence.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)

	// ExistsByEmail and ExistsByPhone back the signup duplicate checks.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	// ExistsByNameAndContact reports whether a patient with the given name
	// already registered with either contact point.
	ExistsByNameAndContact(ctx context.Context, name, email, phone string) (bool, error)
}
