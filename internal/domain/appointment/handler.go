package appointment

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/amat/amat/internal/platform/auth"
	"github.com/amat/amat/pkg/pagination"
)

// Handler exposes the booking and visit-record endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the routes under /appointments. Booking needs an
// authenticated account, the clinical update is restricted to doctors and
// the per-practitioner listing to practitioners. The remaining read
// endpoints are open.
func (h *Handler) RegisterRoutes(e *echo.Echo, requireToken, requirePractitioner, requireDoctor echo.MiddlewareFunc) {
	appts := e.Group("/appointments")
	appts.POST("", h.Book, requireToken)
	appts.PUT("/:id", h.UpdateClinical, requireToken, requireDoctor)
	appts.GET("", h.List)
	appts.GET("/patient/:id", h.ListByPatient)
	appts.GET("/practitioner/:id", h.ListByPractitioner, requireToken, requirePractitioner)
	appts.GET("/history/:id", h.History)
	appts.GET("/visit-count/:id", h.VisitCount)
	appts.GET("/:id/vitals", h.Vitals)
	appts.GET("/:id/diagnoses", h.Diagnoses)
}

type bookRequest struct {
	Appointment
}

// Book creates an appointment for the authenticated patient. The patient id
// always comes from the token, never the payload.
func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	principal := auth.PrincipalIDFromContext(c.Request().Context())
	if principal == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing principal")
	}
	req.PatientID = principal
	if err := h.svc.Book(c.Request().Context(), &req.Appointment); err != nil {
		return mapAppointmentErr(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":       "Appointment booked successfully",
		"appointmentId": req.ID,
	})
}

func (h *Handler) UpdateClinical(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	var upd ClinicalUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.UpdateClinical(c.Request().Context(), id, upd)
	if err != nil {
		return mapAppointmentErr(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Appointment updated successfully",
		"appointment": a,
	})
}

func (h *Handler) List(c echo.Context) error {
	params := pagination.FromContext(c)
	appts, total, err := h.svc.List(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return mapAppointmentErr(err)
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	params.SetHeaders(c, total)
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	return h.listFor(c, h.svc.ListByPatient, "No appointments found for this patient")
}

func (h *Handler) ListByPractitioner(c echo.Context) error {
	return h.listFor(c, h.svc.ListByPractitioner, "No appointments found for this practitioner")
}

type listFunc func(ctx context.Context, id uuid.UUID, limit, offset int) ([]*Appointment, int, error)

func (h *Handler) listFor(c echo.Context, list listFunc, emptyMsg string) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	params := pagination.FromContext(c)
	appts, total, err := list(c.Request().Context(), id, params.Limit, params.Offset)
	if err != nil {
		return mapAppointmentErr(err)
	}
	if total == 0 {
		return echo.NewHTTPError(http.StatusNotFound, emptyMsg)
	}
	params.SetHeaders(c, total)
	return c.JSON(http.StatusOK, appts)
}

// History returns every visit for a patient in visit order.
func (h *Handler) History(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	appts, err := h.svc.HistoryByPatient(c.Request().Context(), id)
	if err != nil {
		return mapAppointmentErr(err)
	}
	if len(appts) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No appointment history found for this patient")
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) VisitCount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	count, err := h.svc.CountByPatient(c.Request().Context(), id)
	if err != nil {
		return mapAppointmentErr(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"visitCount": count})
}

// Vitals and Diagnoses serve the stored field value as-is, null when the
// visit has not been written up yet.
func (h *Handler) Vitals(c echo.Context) error {
	return h.clinicalField(c, func(a *Appointment) any {
		return a.Vitals
	})
}

func (h *Handler) Diagnoses(c echo.Context) error {
	return h.clinicalField(c, func(a *Appointment) any {
		return a.Diagnoses
	})
}

func (h *Handler) clinicalField(c echo.Context, project func(*Appointment) any) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapAppointmentErr(err)
	}
	return c.JSON(http.StatusOK, project(a))
}

func mapAppointmentErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "Appointment was modified by another request, retry")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
