package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"comandapos/internal/common"
	"comandapos/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type UserHandler struct {
	users  services.UserService
	logger *zap.Logger
}

func NewUserHandler(users services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

func paginationParams(c echo.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

func (h *UserHandler) List(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	limit, offset := paginationParams(c)

	users, err := h.users.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		return common.SendServerError(c, "Failed to list users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	user, err := h.users.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return common.SendNotFoundError(c, "user")
		}
		return common.SendServerError(c, "Failed to load user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Create(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var input services.CreateUserInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return common.SendValidationError(c, "body", "email, password and name are required")
	}
	if len(input.Password) < 8 {
		return common.SendValidationError(c, "password", "must be at least 8 characters")
	}

	user, err := h.users.Create(c.Request().Context(), tenantID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			return common.SendValidationError(c, "role", "must be ADMIN, CASHIER or WAITER")
		case errors.Is(err, services.ErrEmailTaken):
			return c.JSON(http.StatusConflict,
				common.CreateErrorResponse("EMAIL_TAKEN", "Email already registered", nil))
		default:
			h.logger.Error("failed to create user", zap.Error(err))
			return common.SendServerError(c, "Failed to create user")
		}
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var input services.UpdateUserInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if input.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}

	user, err := h.users.Update(c.Request().Context(), tenantID, id, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			return common.SendValidationError(c, "role", "must be ADMIN, CASHIER or WAITER")
		case errors.Is(err, services.ErrUserNotFound):
			return common.SendNotFoundError(c, "user")
		default:
			h.logger.Error("failed to update user", zap.Error(err))
			return common.SendServerError(c, "Failed to update user")
		}
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.users.Delete(ctx, tenantID, callerID, id); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfDelete):
			return common.SendValidationError(c, "id", "cannot delete own account")
		case errors.Is(err, services.ErrUserNotFound):
			return common.SendNotFoundError(c, "user")
		default:
			h.logger.Error("failed to delete user", zap.Error(err))
			return common.SendServerError(c, "Failed to delete user")
		}
	}
	return c.NoContent(http.StatusNoContent)
}
