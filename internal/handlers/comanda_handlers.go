package handlers

import (
	"errors"
	"net/http"
	"time"

	"comandapos/internal/common"
	"comandapos/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ComandaHandler struct {
	comandas services.ComandaService
	logger   *zap.Logger
}

func NewComandaHandler(comandas services.ComandaService, logger *zap.Logger) *ComandaHandler {
	return &ComandaHandler{comandas: comandas, logger: logger}
}

type openComandaRequest struct {
	TableNumber int                  `json:"table_number"`
	Items       []services.ItemInput `json:"items"`
}

type addItemsRequest struct {
	Items []services.ItemInput `json:"items"`
}

type updateComandaStatusRequest struct {
	Status string `json:"status"`
}

func comandaErrorResponse(c echo.Context, logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, services.ErrComandaNotFound):
		return common.SendNotFoundError(c, "comanda")
	case errors.Is(err, services.ErrProductNotFound):
		return common.SendNotFoundError(c, "product")
	case errors.Is(err, services.ErrComandaNotOpen):
		return common.SendValidationError(c, "status", "comanda is not open")
	case errors.Is(err, services.ErrEmptyItems):
		return common.SendValidationError(c, "items", "at least one item is required")
	case errors.Is(err, services.ErrInvalidQuantity):
		return common.SendValidationError(c, "quantity", "must be positive")
	case errors.Is(err, services.ErrInvalidTableSeat):
		return common.SendValidationError(c, "table_number", "must be positive")
	case errors.Is(err, services.ErrInvalidStatus):
		return common.SendValidationError(c, "status", "unknown status")
	case errors.Is(err, services.ErrBadTransition):
		return common.SendValidationError(c, "status", "transition not allowed")
	default:
		logger.Error("comanda operation failed", zap.Error(err))
		return common.SendServerError(c, "Comanda operation failed")
	}
}

func (h *ComandaHandler) Create(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req openComandaRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	comanda, err := h.comandas.Open(c.Request().Context(), tenantID, req.TableNumber, req.Items)
	if err != nil {
		return comandaErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, comanda)
}

func (h *ComandaHandler) List(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	limit, offset := paginationParams(c)

	comandas, err := h.comandas.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list comandas", zap.Error(err))
		return common.SendServerError(c, "Failed to list comandas")
	}
	return c.JSON(http.StatusOK, comandas)
}

func (h *ComandaHandler) Get(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	comanda, err := h.comandas.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return comandaErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, comanda)
}

func (h *ComandaHandler) AddItems(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req addItemsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	comanda, err := h.comandas.AddItems(c.Request().Context(), tenantID, id, req.Items)
	if err != nil {
		return comandaErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, comanda)
}

func (h *ComandaHandler) UpdateStatus(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req updateComandaStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	comanda, err := h.comandas.UpdateStatus(c.Request().Context(), tenantID, id, req.Status)
	if err != nil {
		return comandaErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, comanda)
}

// DailyReport returns paid revenue for one calendar day, today by default.
func (h *ComandaHandler) DailyReport(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	day := time.Now()
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return common.SendValidationError(c, "date", "must be YYYY-MM-DD")
		}
		day = parsed
	}

	report, err := h.comandas.DailyReport(c.Request().Context(), tenantID, day)
	if err != nil {
		h.logger.Error("failed to build daily report", zap.Error(err))
		return common.SendServerError(c, "Failed to build report")
	}
	return c.JSON(http.StatusOK, report)
}
