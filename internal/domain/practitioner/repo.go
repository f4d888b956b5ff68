package practitioner

import (
	"context"

	"github.com/google/uuid"

	"github.com/amat/amat/internal/platform/auth"
)

// Repository abstracts practitioner persistence.
type Repository interface {
	Create(ctx context.Context, p *Practitioner) error
	GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)
	GetByEmail(ctx context.Context, email string) (*Practitioner, error)
	ListByRole(ctx context.Context, role auth.Role, limit, offset int) ([]*Practitioner, int, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ExistsByNameAndContact(ctx context.Context, name, email, phone string) (bool, error)
}
