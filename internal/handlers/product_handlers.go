package handlers

import (
	"errors"
	"net/http"

	"comandapos/internal/common"
	"comandapos/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ProductHandler struct {
	products services.ProductService
	logger   *zap.Logger
}

func NewProductHandler(products services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

func (h *ProductHandler) List(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	products, err := h.products.List(c.Request().Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		return common.SendServerError(c, "Failed to list products")
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Create(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var input services.ProductInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if input.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}

	product, err := h.products.Create(c.Request().Context(), tenantID, input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPrice) {
			return common.SendValidationError(c, "price_in_cents", "must be positive")
		}
		h.logger.Error("failed to create product", zap.Error(err))
		return common.SendServerError(c, "Failed to create product")
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var input services.ProductInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	product, err := h.products.Update(c.Request().Context(), tenantID, id, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPrice):
			return common.SendValidationError(c, "price_in_cents", "must be positive")
		case errors.Is(err, services.ErrProductNotFound):
			return common.SendNotFoundError(c, "product")
		default:
			h.logger.Error("failed to update product", zap.Error(err))
			return common.SendServerError(c, "Failed to update product")
		}
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.products.Delete(c.Request().Context(), tenantID, id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return common.SendNotFoundError(c, "product")
		}
		h.logger.Error("failed to delete product", zap.Error(err))
		return common.SendServerError(c, "Failed to delete product")
	}
	return c.NoContent(http.StatusNoContent)
}
