package patient

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/amat/amat/internal/domain/appointment"
	"github.com/amat/amat/internal/platform/auth"
	"github.com/amat/amat/pkg/pagination"
)

// AppointmentLister supplies the appointment slice joined into the
// patient-with-appointments view. Implemented by the appointment service.
type AppointmentLister interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*appointment.Appointment, int, error)
}

// Handler exposes the patient account and record endpoints.
type Handler struct {
	svc          *Service
	issuer       *auth.Issuer
	appointments AppointmentLister
}

func NewHandler(svc *Service, issuer *auth.Issuer, appointments AppointmentLister) *Handler {
	return &Handler{svc: svc, issuer: issuer, appointments: appointments}
}

// RegisterRoutes mounts the account routes under /users and the record
// routes under /patients. requireToken gates the self-service endpoints.
func (h *Handler) RegisterRoutes(e *echo.Echo, requireToken echo.MiddlewareFunc) {
	users := e.Group("/users")
	users.POST("/signup", h.Signup)
	users.POST("/login", h.Login)
	users.GET("/protected", h.Protected, requireToken)
	users.GET("", h.List)
	users.PUT("/profile", h.UpdateProfile, requireToken)

	patients := e.Group("/patients")
	patients.GET("", h.List)
	patients.GET("/:id", h.Get)
	patients.PUT("/:id", h.Update)
	patients.DELETE("/:id", h.Delete)
	patients.GET("/:id/appointments", h.Appointments)
}

type signupRequest struct {
	Patient
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Register(c.Request().Context(), &req.Patient, req.Password); err != nil {
		return mapPatientErr(err)
	}
	token, err := h.issuer.Sign(req.Patient.ID, req.Patient.Name, auth.RolePatient)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": &req.Patient, "token": token})
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return mapPatientErr(err)
	}
	token, err := h.issuer.Sign(p.ID, p.Name, auth.RolePatient)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": p, "token": token})
}

// Protected returns the authenticated patient's own record.
func (h *Handler) Protected(c echo.Context) error {
	id := auth.PrincipalIDFromContext(c.Request().Context())
	if id == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing principal")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapPatientErr(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	params := pagination.FromContext(c)
	patients, total, err := h.svc.List(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return mapPatientErr(err)
	}
	if patients == nil {
		patients = []*Patient{}
	}
	params.SetHeaders(c, total)
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapPatientErr(err)
	}
	return c.JSON(http.StatusOK, p.Information())
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	id := auth.PrincipalIDFromContext(c.Request().Context())
	if id == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing principal")
	}
	return h.applyUpdate(c, id)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return h.applyUpdate(c, id)
}

func (h *Handler) applyUpdate(c echo.Context, id uuid.UUID) error {
	var req ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.UpdateProfile(c.Request().Context(), id, req)
	if err != nil {
		return mapPatientErr(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mapPatientErr(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Patient deleted successfully"})
}

// Appointments returns the patient record together with its appointments.
func (h *Handler) Appointments(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	ctx := c.Request().Context()
	p, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapPatientErr(err)
	}
	params := pagination.FromContext(c)
	appts, total, err := h.appointments.ListByPatient(ctx, id, params.Limit, params.Offset)
	if err != nil {
		return err
	}
	if appts == nil {
		appts = []*appointment.Appointment{}
	}
	params.SetHeaders(c, total)
	return c.JSON(http.StatusOK, echo.Map{
		"patient":      p.Information(),
		"appointments": appts,
	})
}

func mapPatientErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, ErrDuplicateIdentity), errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredential):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid password")
	default:
		return err
	}
}
