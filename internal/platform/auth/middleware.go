package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	PrincipalIDKey   contextKey = "principal_id"
	PrincipalNameKey contextKey = "principal_name"
	PrincipalRoleKey contextKey = "principal_role"
)

// PractitionerDirectory resolves a token subject to a practitioner role.
// Implemented by the practitioner service; the indirection keeps this package
// free of domain imports.
type PractitionerDirectory interface {
	RoleByID(ctx context.Context, id uuid.UUID) (Role, error)
}

// RequireToken is the generic gate: it verifies the bearer token and attaches
// the embedded principal to the request context. Any failure is a 401; no
// further processing happens.
func RequireToken(issuer *Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := issuer.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			id, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, PrincipalIDKey, id)
			ctx = context.WithValue(ctx, PrincipalNameKey, claims.Name)
			ctx = context.WithValue(ctx, PrincipalRoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequirePractitioner runs after RequireToken. It loads the practitioner
// record behind the token subject and, when roles are given, enforces role
// membership. A valid token belonging to no practitioner, or to one outside
// the allowed roles, is a 403.
func RequirePractitioner(dir PractitionerDirectory, roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			id := PrincipalIDFromContext(ctx)
			if id == uuid.Nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			role, err := dir.RoleByID(ctx, id)
			if err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "access denied, not a medical practitioner")
			}

			if len(roles) > 0 {
				allowed := false
				for _, r := range roles {
					if role == r {
						allowed = true
						break
					}
				}
				if !allowed {
					return echo.NewHTTPError(http.StatusForbidden, "access denied, insufficient role")
				}
			}

			ctx = context.WithValue(ctx, PrincipalRoleKey, role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func PrincipalIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(PrincipalIDKey).(uuid.UUID)
	return id
}

func PrincipalNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(PrincipalNameKey).(string)
	return name
}

func RoleFromContext(ctx context.Context) Role {
	role, _ := ctx.Value(PrincipalRoleKey).(Role)
	return role
}
