package middleware

import (
	"context"
	"strings"

	"comandapos/internal/common"
	"comandapos/internal/services"

	"github.com/labstack/echo/v4"
)

// JWTAuth validates the bearer token and stashes the caller's identity on the
// request context.
func JWTAuth(auth services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return common.SendUnauthorizedError(c)
			}
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				return common.SendUnauthorizedError(c)
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				return common.SendUnauthorizedError(c)
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, common.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, common.TenantIDKey, claims.TenantID)
			ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
