package practitioner

import (
	"time"

	"github.com/google/uuid"

	"github.com/amat/amat/internal/platform/auth"
)

// Practitioner maps to the practitioner table. Doctors and nurses share the
// same record shape and are told apart by Role.
type Practitioner struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Email              string    `db:"email" json:"email"`
	PhoneNumber        string    `db:"phone_number" json:"phonenumber"`
	Role               auth.Role `db:"role" json:"role"`
	Specializations    []string  `db:"specializations" json:"specializations"`
	LicenseCertificate *string   `db:"license_certificate" json:"licenseCertificate,omitempty"`
	PasswordHash       string    `db:"password_hash" json:"-"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Directory is the public listing entry for a doctor or nurse.
type Directory struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Specializations []string  `json:"specializations"`
}

func (p *Practitioner) Directory() Directory {
	specs := p.Specializations
	if specs == nil {
		specs = []string{}
	}
	return Directory{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		Specializations: specs,
	}
}
