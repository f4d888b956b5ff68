package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssuer_SignAndParse(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), 24*time.Hour)
	id := uuid.New()

	token, err := issuer.Sign(id, "Ada Obi", RoleDoctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claims.Subject != id.String() {
		t.Errorf("expected subject %s, got %s", id, claims.Subject)
	}
	if claims.Name != "Ada Obi" {
		t.Errorf("expected name Ada Obi, got %s", claims.Name)
	}
	if claims.Role != RoleDoctor {
		t.Errorf("expected role doctor, got %s", claims.Role)
	}
}

func TestIssuer_ParseRejectsExpired(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), -time.Hour)

	token, err := issuer.Sign(uuid.New(), "Ada Obi", RolePatient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := issuer.Parse(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestIssuer_ParseRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), 24*time.Hour)
	other := NewIssuer([]byte("other-secret"), 24*time.Hour)

	token, err := issuer.Sign(uuid.New(), "Ada Obi", RolePatient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := other.Parse(token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestIssuer_ParseRejectsGarbage(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), 24*time.Hour)
	if _, err := issuer.Parse("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestPractitionerRole(t *testing.T) {
	if r, ok := PractitionerRole("doctor"); !ok || r != RoleDoctor {
		t.Errorf("expected doctor to be valid, got %s %v", r, ok)
	}
	if r, ok := PractitionerRole("nurse"); !ok || r != RoleNurse {
		t.Errorf("expected nurse to be valid, got %s %v", r, ok)
	}
	if _, ok := PractitionerRole("patient"); ok {
		t.Error("expected patient to be invalid as a practitioner role")
	}
	if _, ok := PractitionerRole("surgeon"); ok {
		t.Error("expected surgeon to be invalid as a practitioner role")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret" {
		t.Error("expected hash to differ from plaintext")
	}

	if err := CheckPassword(hash, "s3cret"); err != nil {
		t.Errorf("expected matching password to verify: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Error("expected mismatched password to fail")
	}
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	if _, err := HashPassword("", 4); err == nil {
		t.Error("expected error for empty password")
	}
}
