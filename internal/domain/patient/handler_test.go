package patient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/amat/amat/internal/domain/appointment"
	"github.com/amat/amat/internal/platform/auth"
)

type mockAppointments struct {
	byPatient map[uuid.UUID][]*appointment.Appointment
}

func (m *mockAppointments) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*appointment.Appointment, int, error) {
	appts := m.byPatient[patientID]
	return appts, len(appts), nil
}

func newTestHandler() (*Handler, *mockRepo, *auth.Issuer) {
	repo := newMockRepo()
	svc := NewService(repo, bcrypt.MinCost)
	issuer := auth.NewIssuer([]byte("test-secret"), time.Hour)
	appts := &mockAppointments{byPatient: make(map[uuid.UUID][]*appointment.Appointment)}
	return NewHandler(svc, issuer, appts), repo, issuer
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

func TestSignupHandlerIssuesPatientToken(t *testing.T) {
	h, _, issuer := newTestHandler()

	body := `{"name":"Ada Obi","email":"ada@example.com","phonenumber":"0801111111","password":"correct horse"}`
	c, rec := newJSONContext(http.MethodPost, "/users/signup", body)
	if err := h.Signup(c); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp struct {
		User  *Patient `json:"user"`
		Token string   `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User == nil || resp.User.ID == uuid.Nil {
		t.Fatalf("user missing id: %+v", resp.User)
	}
	claims, err := issuer.Parse(resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != auth.RolePatient {
		t.Fatalf("token role = %q, want patient", claims.Role)
	}
	if claims.Name != "Ada Obi" {
		t.Fatalf("token name = %q", claims.Name)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaks password material: %s", rec.Body.String())
	}
}

func TestSignupHandlerDuplicate(t *testing.T) {
	h, _, _ := newTestHandler()

	body := `{"name":"Ada Obi","email":"ada@example.com","phonenumber":"0801111111","password":"pw"}`
	c, _ := newJSONContext(http.MethodPost, "/users/signup", body)
	if err := h.Signup(c); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	c, _ = newJSONContext(http.MethodPost, "/users/signup", body)
	err := h.Signup(c)
	if got := httpStatus(t, err); got != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", got)
	}
}

func TestLoginHandler(t *testing.T) {
	h, _, _ := newTestHandler()

	signup := `{"name":"Ada Obi","email":"ada@example.com","phonenumber":"0801111111","password":"correct horse"}`
	c, _ := newJSONContext(http.MethodPost, "/users/signup", signup)
	if err := h.Signup(c); err != nil {
		t.Fatalf("signup: %v", err)
	}

	c, rec := newJSONContext(http.MethodPost, "/users/login", `{"email":"ada@example.com","password":"correct horse"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	c, _ = newJSONContext(http.MethodPost, "/users/login", `{"email":"nobody@example.com","password":"pw"}`)
	if got := httpStatus(t, h.Login(c)); got != http.StatusNotFound {
		t.Fatalf("unknown email status = %d, want 404", got)
	}

	c, _ = newJSONContext(http.MethodPost, "/users/login", `{"email":"ada@example.com","password":"wrong"}`)
	if got := httpStatus(t, h.Login(c)); got != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", got)
	}
}

func TestProtectedHandlerReturnsOwnRecord(t *testing.T) {
	h, repo, _ := newTestHandler()

	p := &Patient{Name: "Ada Obi", Email: "ada@example.com", PhoneNumber: "0801111111"}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := newJSONContext(http.MethodGet, "/users/protected", "")
	req := c.Request().WithContext(context.WithValue(c.Request().Context(), auth.PrincipalIDKey, p.ID))
	c.SetRequest(req)

	if err := h.Protected(c); err != nil {
		t.Fatalf("Protected: %v", err)
	}
	var got Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != p.ID || got.Email != p.Email {
		t.Fatalf("got %+v, want own record", got)
	}
}

func TestAppointmentsHandlerJoinsPatientAndVisits(t *testing.T) {
	h, repo, _ := newTestHandler()

	p := &Patient{Name: "Ada Obi", Email: "ada@example.com", PhoneNumber: "0801111111"}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed: %v", err)
	}
	appts := h.appointments.(*mockAppointments)
	appts.byPatient[p.ID] = []*appointment.Appointment{
		{ID: uuid.New(), PatientID: p.ID, PractitionerID: uuid.New(), VisitNumber: 1},
	}

	c, rec := newJSONContext(http.MethodGet, "/patients/"+p.ID.String()+"/appointments", "")
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.Appointments(c); err != nil {
		t.Fatalf("Appointments: %v", err)
	}
	var resp struct {
		Patient      Information               `json:"patient"`
		Appointments []appointment.Appointment `json:"appointments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Patient.Name != "Ada Obi" || len(resp.Appointments) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestListHandlerReturnsBareArray(t *testing.T) {
	h, repo, _ := newTestHandler()
	for _, email := range []string{"ada@example.com", "obi@example.com"} {
		p := &Patient{Name: "P " + email, Email: email, PhoneNumber: "080" + email}
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	c, rec := newJSONContext(http.MethodGet, "/users", "")
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	var patients []*Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &patients); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(patients) != 2 {
		t.Fatalf("got %d patients, want 2", len(patients))
	}
	if got := rec.Header().Get("X-Total-Count"); got != "2" {
		t.Fatalf("X-Total-Count = %q, want 2", got)
	}
}

func TestDeleteHandlerMissing(t *testing.T) {
	h, _, _ := newTestHandler()
	id := uuid.New()

	c, _ := newJSONContext(http.MethodDelete, "/patients/"+id.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	if got := httpStatus(t, h.Delete(c)); got != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", got)
	}
}
