package practitioner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amat/amat/internal/platform/auth"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a Postgres-backed practitioner repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const practitionerCols = `id, name, email, phone_number, role, specializations,
	license_certificate, password_hash, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Practitioner) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO practitioner (id, name, email, phone_number, role, specializations,
			license_certificate, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Name, p.Email, p.PhoneNumber, string(p.Role), p.Specializations,
		p.LicenseCertificate, p.PasswordHash, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("insert practitioner: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+practitionerCols+` FROM practitioner WHERE id = $1`, id)
	return scanPractitioner(row)
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Practitioner, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+practitionerCols+` FROM practitioner WHERE email = $1`, email)
	return scanPractitioner(row)
}

func (r *repoPG) ListByRole(ctx context.Context, role auth.Role, limit, offset int) ([]*Practitioner, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM practitioner WHERE role = $1`, string(role)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count practitioners: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+practitionerCols+` FROM practitioner
		WHERE role = $1
		ORDER BY name
		LIMIT $2 OFFSET $3`, string(role), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list practitioners: %w", err)
	}
	defer rows.Close()

	practitioners := make([]*Practitioner, 0, limit)
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, 0, err
		}
		practitioners = append(practitioners, p)
	}
	return practitioners, total, rows.Err()
}

func (r *repoPG) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM practitioner WHERE email = $1)`, email)
}

func (r *repoPG) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM practitioner WHERE phone_number = $1)`, phone)
}

func (r *repoPG) ExistsByNameAndContact(ctx context.Context, name, email, phone string) (bool, error) {
	return r.exists(ctx, `
		SELECT EXISTS (SELECT 1 FROM practitioner
			WHERE name = $1 AND (email = $2 OR phone_number = $3))`, name, email, phone)
}

func (r *repoPG) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("practitioner exists check: %w", err)
	}
	return found, nil
}

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var (
		p    Practitioner
		role string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PhoneNumber, &role, &p.Specializations,
		&p.LicenseCertificate, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan practitioner: %w", err)
	}
	p.Role = auth.Role(role)
	return &p, nil
}
