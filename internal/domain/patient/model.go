package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. The password hash is never serialized.
type Patient struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	Name                  string    `db:"name" json:"name"`
	DOB                   *string   `db:"dob" json:"dob,omitempty"`
	Gender                *string   `db:"gender" json:"gender,omitempty"`
	Email                 string    `db:"email" json:"email"`
	PhoneNumber           string    `db:"phone_number" json:"phonenumber"`
	Address               *string   `db:"address" json:"address,omitempty"`
	Town                  *string   `db:"town" json:"town,omitempty"`
	Country               *string   `db:"country" json:"country,omitempty"`
	Education             *string   `db:"education" json:"education,omitempty"`
	Occupation            *string   `db:"occupation" json:"occupation,omitempty"`
	Religion              *string   `db:"religion" json:"religion,omitempty"`
	MaritalStatus         *string   `db:"marital_status" json:"maritalStatus,omitempty"`
	PreexistingConditions *string   `db:"preexisting_conditions" json:"preexisting_conditions,omitempty"`
	CurrentMedications    *string   `db:"current_medications" json:"current_medications,omitempty"`
	PasswordHash          string    `db:"password_hash" json:"-"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// Information is the read-only projection served to practitioners reviewing
// a patient. Free-text history fields default to empty strings.
type Information struct {
	Name                  string  `json:"name"`
	DOB                   *string `json:"dob,omitempty"`
	Gender                *string `json:"gender,omitempty"`
	Email                 string  `json:"email"`
	PhoneNumber           string  `json:"phonenumber"`
	Address               *string `json:"address,omitempty"`
	Town                  *string `json:"town,omitempty"`
	Country               *string `json:"country,omitempty"`
	Education             *string `json:"education,omitempty"`
	Occupation            *string `json:"occupation,omitempty"`
	Religion              *string `json:"religion,omitempty"`
	MaritalStatus         *string `json:"maritalStatus,omitempty"`
	PreexistingConditions string  `json:"preexisting_conditions"`
	CurrentMedications    string  `json:"current_medications"`
}

// Information returns the projection of the record shown in practitioner views.
func (p *Patient) Information() Information {
	return Information{
		Name:                  p.Name,
		DOB:                   p.DOB,
		Gender:                p.Gender,
		Email:                 p.Email,
		PhoneNumber:           p.PhoneNumber,
		Address:               p.Address,
		Town:                  p.Town,
		Country:               p.Country,
		Education:             p.Education,
		Occupation:            p.Occupation,
		Religion:              p.Religion,
		MaritalStatus:         p.MaritalStatus,
		PreexistingConditions: strVal(p.PreexistingConditions),
		CurrentMedications:    strVal(p.CurrentMedications),
	}
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
