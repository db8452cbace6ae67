package handlers

import (
	"errors"
	"net/http"

	"comandapos/internal/common"
	"comandapos/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	accounts services.AccountService
	users    services.UserService
	auth     services.AuthService
	logger   *zap.Logger
}

func NewAuthHandler(accounts services.AccountService, users services.UserService, auth services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, users: users, auth: auth, logger: logger}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" || req.CompanyName == "" {
		return common.SendValidationError(c, "body", "email, password, name and company_name are required")
	}
	if len(req.Password) < 8 {
		return common.SendValidationError(c, "password", "must be at least 8 characters")
	}

	tenant, user, err := h.accounts.Register(c.Request().Context(), services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.JSON(http.StatusConflict,
				common.CreateErrorResponse("EMAIL_TAKEN", "Email already registered", nil))
		}
		h.logger.Error("registration failed", zap.Error(err))
		return common.SendServerError(c, "Failed to register")
	}

	tokens, err := h.auth.GenerateTokens(c.Request().Context(), user)
	if err != nil {
		h.logger.Error("failed to issue tokens", zap.Error(err))
		return common.SendServerError(c, "Failed to issue tokens")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"tenant": tenant,
		"user":   user,
		"tokens": tokens,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrWrongCredentials) {
			return common.SendUnauthorizedError(c)
		}
		h.logger.Error("login failed", zap.Error(err))
		return common.SendServerError(c, "Failed to log in")
	}

	tokens, err := h.auth.GenerateTokens(c.Request().Context(), user)
	if err != nil {
		h.logger.Error("failed to issue tokens", zap.Error(err))
		return common.SendServerError(c, "Failed to issue tokens")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":   user,
		"tokens": tokens,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh_token is required")
	}

	tokens, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken, h.users.GetByAnyTenant)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return common.SendUnauthorizedError(c)
		}
		h.logger.Error("token refresh failed", zap.Error(err))
		return common.SendServerError(c, "Failed to refresh tokens")
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh_token is required")
	}

	if err := h.auth.RevokeRefreshToken(c.Request().Context(), req.RefreshToken); err != nil {
		h.logger.Error("failed to revoke refresh token", zap.Error(err))
		return common.SendServerError(c, "Failed to log out")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return common.SendNotFoundError(c, "user")
		}
		return common.SendServerError(c, "Failed to load user")
	}
	return c.JSON(http.StatusOK, user)
}
