package practitioner

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amat/amat/internal/platform/auth"
	"github.com/amat/amat/pkg/pagination"
)

// Handler exposes the practitioner account and directory endpoints.
type Handler struct {
	svc    *Service
	issuer *auth.Issuer
}

func NewHandler(svc *Service, issuer *auth.Issuer) *Handler {
	return &Handler{svc: svc, issuer: issuer}
}

// RegisterRoutes mounts the practitioner routes under /medical. The
// directory listings require an authenticated practitioner.
func (h *Handler) RegisterRoutes(e *echo.Echo, requireToken, requirePractitioner echo.MiddlewareFunc) {
	medical := e.Group("/medical")
	medical.POST("/signup", h.Signup)
	medical.POST("/login", h.Login)
	medical.GET("/doctors", h.ListDoctors, requireToken, requirePractitioner)
	medical.GET("/nurses", h.ListNurses, requireToken, requirePractitioner)
}

type signupRequest struct {
	Practitioner
	Role     string `json:"role"`
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
	if err := h.svc.Register(c.Request().Context(), &req.Practitioner, req.Role, req.Password); err != nil {
		return mapPractitionerErr(err)
	}
	token, err := h.issuer.Sign(req.Practitioner.ID, req.Practitioner.Name, req.Practitioner.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"practitioner": &req.Practitioner, "token": token})
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return mapPractitionerErr(err)
	}
	token, err := h.issuer.Sign(p.ID, p.Name, p.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"practitioner": p, "token": token})
}

func (h *Handler) ListDoctors(c echo.Context) error {
	return h.listByRole(c, auth.RoleDoctor, "No doctors found")
}

func (h *Handler) ListNurses(c echo.Context) error {
	return h.listByRole(c, auth.RoleNurse, "No nurses found")
}

func (h *Handler) listByRole(c echo.Context, role auth.Role, emptyMsg string) error {
	params := pagination.FromContext(c)
	practitioners, total, err := h.svc.ListByRole(c.Request().Context(), role, params.Limit, params.Offset)
	if err != nil {
		return mapPractitionerErr(err)
	}
	if total == 0 {
		return echo.NewHTTPError(http.StatusNotFound, emptyMsg)
	}
	entries := make([]Directory, 0, len(practitioners))
	for _, p := range practitioners {
		entries = append(entries, p.Directory())
	}
	params.SetHeaders(c, total)
	return c.JSON(http.StatusOK, entries)
}

func mapPractitionerErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, ErrDuplicateIdentity), errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidRole):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredential):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid password")
	default:
		return err
	}
}
