package appointment

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

// visitNumberRetries bounds how often Create retries after losing the race
// for a visit number.
const visitNumberRetries = 3

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a Postgres-backed appointment repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const appointmentCols = `id, patient_id, practitioner_id, visit_number,
	health_concern, duration, symptoms, medication, allergies,
	medical_conditions, surgeries, family_history,
	vitals, diagnoses, prescribed_medications, lab_xray_reports, referral,
	version_id, created_at, updated_at`

// Create assigns the visit number inside the insert itself. The unique
// constraint on (patient_id, visit_number) rejects the loser of a concurrent
// booking, which is then retried with a fresh number.
func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.VersionID = 1
	if a.PrescribedMedications == nil {
		a.PrescribedMedications = []string{}
	}

	for attempt := 0; attempt < visitNumberRetries; attempt++ {
		err := r.pool.QueryRow(ctx, `
			INSERT INTO appointment (id, patient_id, practitioner_id, visit_number,
				health_concern, duration, symptoms, medication, allergies,
				medical_conditions, surgeries, family_history,
				vitals, diagnoses, prescribed_medications, lab_xray_reports, referral,
				version_id, created_at, updated_at)
			SELECT $1, $2, $3, COALESCE(MAX(visit_number), 0) + 1,
				$4, $5, $6, $7, $8, $9, $10, $11,
				$12, $13, $14, $15, $16,
				$17, $18, $19
			FROM appointment WHERE patient_id = $2
			RETURNING visit_number`,
			a.ID, a.PatientID, a.PractitionerID,
			a.HealthConcern, a.Duration, a.Symptoms, a.Medication, a.Allergies,
			a.MedicalConditions, a.Surgeries, a.FamilyHistory,
			a.Vitals, a.Diagnoses, a.PrescribedMedications, a.LabReports, a.Referral,
			a.VersionID, a.CreatedAt, a.UpdatedAt).Scan(&a.VisitNumber)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return fmt.Errorf("%w: could not assign visit number", ErrConflict)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointment WHERE id = $1`, id)
	return scanAppointment(row)
}

func (r *repoPG) UpdateClinical(ctx context.Context, a *Appointment) error {
	a.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointment SET vitals=$3, diagnoses=$4, prescribed_medications=$5,
			lab_xray_reports=$6, referral=$7,
			version_id = version_id + 1, updated_at=$8
		WHERE id = $1 AND version_id = $2`,
		a.ID, a.VersionID,
		a.Vitals, a.Diagnoses, a.PrescribedMedications, a.LabReports, a.Referral,
		a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a vanished row from a lost version race.
		var found bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM appointment WHERE id = $1)`, a.ID).Scan(&found); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		if !found {
			return ErrNotFound
		}
		return ErrConflict
	}
	a.VersionID++
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return r.listWhere(ctx, ``, nil, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listWhere(ctx, `WHERE patient_id = $1`, []any{patientID}, limit, offset)
}

func (r *repoPG) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listWhere(ctx, `WHERE practitioner_id = $1`, []any{practitionerID}, limit, offset)
}

func (r *repoPG) listWhere(ctx context.Context, where string, args []any, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointment `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM appointment %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		appointmentCols, where, n+1, n+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	appts, err := collectAppointments(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *repoPG) HistoryByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE patient_id = $1
		ORDER BY visit_number`, patientID)
	if err != nil {
		return nil, fmt.Errorf("patient history: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows, 0)
}

func (r *repoPG) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE patient_id = $1`, patientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count patient visits: %w", err)
	}
	return count, nil
}

func collectAppointments(rows pgx.Rows, sizeHint int) ([]*Appointment, error) {
	appts := make([]*Appointment, 0, sizeHint)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.PractitionerID, &a.VisitNumber,
		&a.HealthConcern, &a.Duration, &a.Symptoms, &a.Medication, &a.Allergies,
		&a.MedicalConditions, &a.Surgeries, &a.FamilyHistory,
		&a.Vitals, &a.Diagnoses, &a.PrescribedMedications, &a.LabReports, &a.Referral,
		&a.VersionID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	if a.PrescribedMedications == nil {
		a.PrescribedMedications = []string{}
	}
	return &a, nil
}
