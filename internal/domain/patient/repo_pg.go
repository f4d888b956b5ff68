package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a Postgres-backed patient repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, name, dob, gender, email, phone_number, address, town, country,
	education, occupation, religion, marital_status,
	preexisting_conditions, current_medications, password_hash, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient (id, name, dob, gender, email, phone_number, address, town, country,
			education, occupation, religion, marital_status,
			preexisting_conditions, current_medications, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		p.ID, p.Name, p.DOB, p.Gender, p.Email, p.PhoneNumber, p.Address, p.Town, p.Country,
		p.Education, p.Occupation, p.Religion, p.MaritalStatus,
		p.PreexistingConditions, p.CurrentMedications, p.PasswordHash, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id)
	return scanPatient(row)
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE email = $1`, email)
	return scanPatient(row)
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	p.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE patient SET name=$2, dob=$3, gender=$4, email=$5, phone_number=$6,
			address=$7, town=$8, country=$9, education=$10, occupation=$11,
			religion=$12, marital_status=$13, preexisting_conditions=$14,
			current_medications=$15, updated_at=$16
		WHERE id = $1`,
		p.ID, p.Name, p.DOB, p.Gender, p.Email, p.PhoneNumber,
		p.Address, p.Town, p.Country, p.Education, p.Occupation,
		p.Religion, p.MaritalStatus, p.PreexistingConditions,
		p.CurrentMedications, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+patientCols+` FROM patient
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	patients := make([]*Patient, 0, limit)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE email = $1)`, email)
}

func (r *repoPG) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE phone_number = $1)`, phone)
}

func (r *repoPG) ExistsByNameAndContact(ctx context.Context, name, email, phone string) (bool, error) {
	return r.exists(ctx, `
		SELECT EXISTS (SELECT 1 FROM patient
			WHERE name = $1 AND (email = $2 OR phone_number = $3))`, name, email, phone)
}

func (r *repoPG) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("patient exists check: %w", err)
	}
	return found, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.DOB, &p.Gender, &p.Email, &p.PhoneNumber,
		&p.Address, &p.Town, &p.Country, &p.Education, &p.Occupation,
		&p.Religion, &p.MaritalStatus, &p.PreexistingConditions,
		&p.CurrentMedications, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
