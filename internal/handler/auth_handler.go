package handler

import (
	"github.com/labstack/echo/v4"

	"catapi/internal/auth"
	"catapi/internal/model"
	"catapi/internal/service"
)

// MsgLoggedOut is the envelope message of a successful logout.
const MsgLoggedOut = "Logged out"

// AuthHandler issues and revokes the bearer tokens used by /cats and /users.
type AuthHandler struct {
	svc service.AuthService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token for /auth/refresh and /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by login and refresh. Refresh leaves out the
// refresh token and the user.
type TokenResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	User         *model.UserOutput `json:"user,omitempty"`
}

// Login godoc
// @Summary Exchange credentials for tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body Credentials true "Email and password"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req Credentials
	if err := bind(c, &req); err != nil {
		return err
	}
	access, refresh, user, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	out := user.Output()
	return read(c, TokenResponse{AccessToken: access, RefreshToken: refresh, User: &out})
}

// Refresh godoc
// @Summary Issue a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	access, err := h.svc.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return read(c, TokenResponse{AccessToken: access})
}

// Logout godoc
// @Summary Revoke the refresh token and the current access token
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	claims, _ := c.Get(auth.ContextKey).(*auth.Claims)
	if err := h.svc.Logout(c.Request().Context(), req.RefreshToken, claims); err != nil {
		return err
	}
	return written(c, MsgLoggedOut, nil)
}
