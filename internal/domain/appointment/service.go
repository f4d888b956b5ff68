package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no appointment matches the lookup.
	ErrNotFound = errors.New("appointment not found")
	// ErrConflict is returned when a write loses a race with a concurrent
	// update to the same record.
	ErrConflict = errors.New("appointment was modified concurrently")
	// ErrValidation is returned when a request is missing or malformed fields.
	ErrValidation = errors.New("invalid appointment input")
)

// Service implements booking, clinical updates and the visit queries.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Book stores a new appointment. The patient and practitioner ids must both
// be set; the visit number is assigned by the repository.
func (s *Service) Book(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient id is required", ErrValidation)
	}
	if a.PractitionerID == uuid.Nil {
		return fmt.Errorf("%w: practitioner id is required", ErrValidation)
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateClinical merges the provided fields into the stored record. The
// write is conditional on the version read here, so two doctors editing the
// same visit cannot silently overwrite each other.
func (s *Service) UpdateClinical(ctx context.Context, id uuid.UUID, upd ClinicalUpdate) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyClinical(a, upd)
	if err := s.repo.UpdateClinical(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPractitioner(ctx, practitionerID, limit, offset)
}

func (s *Service) HistoryByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.repo.HistoryByPatient(ctx, patientID)
}

func (s *Service) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	return s.repo.CountByPatient(ctx, patientID)
}

func applyClinical(a *Appointment, upd ClinicalUpdate) {
	setOpt(&a.Vitals, upd.Vitals)
	setOpt(&a.Diagnoses, upd.Diagnoses)
	setOpt(&a.LabReports, upd.LabReports)
	setOpt(&a.Referral, upd.Referral)
	if len(upd.PrescribedMedications) > 0 {
		a.PrescribedMedications = upd.PrescribedMedications
	}
}

func setOpt(dst **string, v string) {
	if v != "" {
		val := v
		*dst = &val
	}
}
