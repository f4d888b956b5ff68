package practitioner

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/amat/amat/internal/platform/auth"
)

func newTestHandler() (*Handler, *auth.Issuer) {
	svc := NewService(newMockRepo(), bcrypt.MinCost)
	issuer := auth.NewIssuer([]byte("test-secret"), time.Hour)
	return NewHandler(svc, issuer), issuer
}

func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return httpErr.Code
}

func TestSignupHandlerIssuesRoleToken(t *testing.T) {
	h, issuer := newTestHandler()

	body := `{"name":"Dr Eze","email":"eze@example.com","phonenumber":"0701111111","role":"doctor","password":"correct horse","specializations":["cardiology"]}`
	c, rec := newJSONContext(http.MethodPost, "/medical/signup", body)
	if err := h.Signup(c); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp struct {
		Practitioner *Practitioner `json:"practitioner"`
		Token        string        `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Practitioner == nil || resp.Practitioner.Name != "Dr Eze" {
		t.Fatalf("practitioner = %+v, want Dr Eze under the practitioner key", resp.Practitioner)
	}
	claims, err := issuer.Parse(resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != auth.RoleDoctor {
		t.Fatalf("token role = %q, want doctor", claims.Role)
	}
}

func TestSignupHandlerRejectsPatientRole(t *testing.T) {
	h, _ := newTestHandler()

	body := `{"name":"Impostor","email":"imp@example.com","phonenumber":"0702222222","role":"patient","password":"pw"}`
	c, _ := newJSONContext(http.MethodPost, "/medical/signup", body)
	if got := httpStatus(t, h.Signup(c)); got != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", got)
	}
}

func TestListDoctorsHandlerEmpty(t *testing.T) {
	h, _ := newTestHandler()

	c, _ := newJSONContext(http.MethodGet, "/medical/doctors", "")
	if got := httpStatus(t, h.ListDoctors(c)); got != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", got)
	}
}

func TestListDoctorsHandler(t *testing.T) {
	h, _ := newTestHandler()
	seedPractitioner(t, h.svc, "Dr Eze", "eze@example.com", "doctor")
	seedPractitioner(t, h.svc, "Nurse Bisi", "bisi@example.com", "nurse")

	c, rec := newJSONContext(http.MethodGet, "/medical/doctors", "")
	if err := h.ListDoctors(c); err != nil {
		t.Fatalf("ListDoctors: %v", err)
	}
	var doctors []Directory
	if err := json.Unmarshal(rec.Body.Bytes(), &doctors); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(doctors) != 1 || doctors[0].Name != "Dr Eze" {
		t.Fatalf("unexpected response: %+v", doctors)
	}
	if got := rec.Header().Get("X-Total-Count"); got != "1" {
		t.Fatalf("X-Total-Count = %q, want 1", got)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("directory leaks password material")
	}
}
