package middleware

import (
	"net/http"

	"comandapos/internal/common"

	"github.com/labstack/echo/v4"
)

// RequireRole allows the request through only when the authenticated caller
// holds one of the given roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			if _, found := allowed[role]; !found {
				return c.JSON(http.StatusForbidden,
					common.CreateErrorResponse("FORBIDDEN", "Insufficient permissions", nil))
			}
			return next(c)
		}
	}
}
