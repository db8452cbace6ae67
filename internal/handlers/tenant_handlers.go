package handlers

import (
	"errors"
	"net/http"

	"comandapos/internal/common"
	"comandapos/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type TenantHandler struct {
	accounts services.AccountService
	logger   *zap.Logger
}

func NewTenantHandler(accounts services.AccountService, logger *zap.Logger) *TenantHandler {
	return &TenantHandler{accounts: accounts, logger: logger}
}

type renameTenantRequest struct {
	Name string `json:"name"`
}

func (h *TenantHandler) Get(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	tenant, err := h.accounts.GetTenant(c.Request().Context(), tenantID)
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			return common.SendNotFoundError(c, "tenant")
		}
		h.logger.Error("failed to load tenant", zap.Error(err))
		return common.SendServerError(c, "Failed to load tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandler) Rename(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req renameTenantRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}

	tenant, err := h.accounts.RenameTenant(c.Request().Context(), tenantID, req.Name)
	if err != nil {
		h.logger.Error("failed to rename tenant", zap.Error(err))
		return common.SendServerError(c, "Failed to rename tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}
