package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment maps to the appointment table. Intake fields are written by
// the patient at booking time; clinical fields are written by doctors during
// or after the visit. VersionID guards concurrent clinical updates.
type Appointment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patientId"`
	PractitionerID uuid.UUID `db:"practitioner_id" json:"practitionerId"`
	VisitNumber    int       `db:"visit_number" json:"visitNumber"`

	HealthConcern     *string `db:"health_concern" json:"newHealthConcern,omitempty"`
	Duration          *string `db:"duration" json:"duration,omitempty"`
	Symptoms          *string `db:"symptoms" json:"symptoms,omitempty"`
	Medication        *string `db:"medication" json:"medication,omitempty"`
	Allergies         *string `db:"allergies" json:"allergies,omitempty"`
	MedicalConditions *string `db:"medical_conditions" json:"medicalConditions,omitempty"`
	Surgeries         *string `db:"surgeries" json:"surgeries,omitempty"`
	FamilyHistory     *string `db:"family_history" json:"familyHistory,omitempty"`

	Vitals                *string  `db:"vitals" json:"vitals,omitempty"`
	Diagnoses             *string  `db:"diagnoses" json:"diagnoses,omitempty"`
	PrescribedMedications []string `db:"prescribed_medications" json:"prescribedMedications"`
	LabReports            *string  `db:"lab_xray_reports" json:"labXrayReports,omitempty"`
	Referral              *string  `db:"referral" json:"referral,omitempty"`

	VersionID int       `db:"version_id" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClinicalUpdate carries the fields a doctor may change on a visit record.
// Empty fields leave the stored value untouched; a non-empty medication list
// replaces the stored list.
type ClinicalUpdate struct {
	Vitals                string   `json:"vitals"`
	Diagnoses             string   `json:"diagnoses"`
	PrescribedMedications []string `json:"prescribedMedications"`
	LabReports            string   `json:"labXrayReports"`
	Referral              string   `json:"referral"`
}
