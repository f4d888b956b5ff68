package appointment

import (
	"context"

	"github.com/google/uuid"
)

// Repository abstracts appointment persistence.
type Repository interface {
	// Create stores the appointment and assigns the next visit number for
	// its patient. Concurrent bookings for the same patient never share a
	// visit number.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// UpdateClinical writes the clinical fields of a only if the stored
	// version still matches a.VersionID. A lost race returns ErrConflict.
	UpdateClinical(ctx context.Context, a *Appointment) error

	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// HistoryByPatient returns all of a patient's visits in visit order.
	HistoryByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
}
