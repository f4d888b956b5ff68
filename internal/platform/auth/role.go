package auth

// Role identifies the kind of principal a token was issued to. The set is
// closed: patients book appointments, doctors write clinical fields, nurses
// are authenticated practitioners without clinical-write capability.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleNurse   Role = "nurse"
)

// PractitionerRole maps a request-supplied role string to a practitioner
// role. Only doctor and nurse are valid; anything else reports false.
func PractitionerRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleDoctor:
		return RoleDoctor, true
	case RoleNurse:
		return RoleNurse, true
	}
	return "", false
}

// IsPractitioner reports whether the role belongs to a medical practitioner.
func (r Role) IsPractitioner() bool {
	return r == RoleDoctor || r == RoleNurse
}
