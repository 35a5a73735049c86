package handler

import (
	"github.com/labstack/echo/v4"

	"catapi/internal/auth"
	"catapi/internal/errors"
	"catapi/internal/model"
	"catapi/internal/policy"
	"catapi/internal/service"
)

// UserHandler serves the /users endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest is the signup body.
type CreateUserRequest struct {
	UserName string `json:"user_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// UpdateUserRequest lists the fields a user may change on their own record.
type UpdateUserRequest struct {
	UserName *string `json:"user_name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// CreateUser godoc
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Create(c.Request().Context(), service.NewUser{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return written(c, MsgUserCreated, user.Output())
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.UserOutput
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	var req IDParam
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Get(c.Request().Context(), req.ID)
	if err != nil {
		return err
	}
	return read(c, user.Output())
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} model.UserOutput
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]model.UserOutput, 0, len(users))
	for _, u := range users {
		out = append(out, u.Output())
	}
	return read(c, out)
}

// UpdateCurrentUser godoc
// @Summary Update the caller's account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body UpdateUserRequest true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/current [put]
func (h *UserHandler) UpdateCurrentUser(c echo.Context) error {
	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.UpdateCurrent(c.Request().Context(), auth.PrincipalFrom(c), service.UserChanges{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return written(c, MsgUserUpdated, user.Output())
}

// DeleteCurrentUser godoc
// @Summary Delete the caller's account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/current [delete]
func (h *UserHandler) DeleteCurrentUser(c echo.Context) error {
	user, err := h.svc.DeleteCurrent(c.Request().Context(), auth.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return written(c, MsgUserDeleted, user.Output())
}

// CheckToken godoc
// @Summary Describe the caller's token
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserOutput
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/token [get]
func (h *UserHandler) CheckToken(c echo.Context) error {
	p := auth.PrincipalFrom(c)
	if p == nil {
		return errors.Unauthenticated(policy.MsgTokenNotValid)
	}
	return read(c, model.UserOutput{ID: p.ID, UserName: p.UserName, Email: p.Email})
}
