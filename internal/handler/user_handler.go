package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "hotel/internal/errors"
	"hotel/internal/guard"
	"hotel/internal/model"
	"hotel/internal/service"
)

// UserHandler handles user registration, login and account endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// RegisterUserRequest represents a user registration request.
// The password travels in the passwordHash field; it is hashed server side.
type RegisterUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"passwordHash" validate:"required"`
	FirstName   string  `json:"firstName" validate:"required"`
	LastName    string  `json:"lastName" validate:"required"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,e164"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"passwordHash" validate:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// UpdateUserRequest is a partial update of the caller's own record. Omitted fields are unchanged.
type UpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	Password    *string `json:"passwordHash" validate:"omitempty,min=1"`
	FirstName   *string `json:"firstName" validate:"omitempty,min=1"`
	LastName    *string `json:"lastName" validate:"omitempty,min=1"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,e164"`
}

// UpdateAdminRequest sets a user's admin flag.
type UpdateAdminRequest struct {
	IsAdmin *bool `json:"isAdmin" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterUserRequest true "Registration data"
// @Success 201 {object} model.User
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.svc.Register(c.Request().Context(), service.RegisterUserInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return apperrors.ToEcho(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Log in and obtain an access token
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 201 {object} LoginResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return apperrors.ToEcho(err)
	}
	return c.JSON(http.StatusCreated, LoginResponse{AccessToken: token})
}

// Me godoc
// @Summary Current session payload
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.Claims
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	claims, ok := guard.ClaimsFrom(c)
	if !ok {
		return apperrors.ToEcho(apperrors.Unauthorized("Missing or malformed token"))
	}
	return c.JSON(http.StatusOK, claims)
}

// Update godoc
// @Summary Update own account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.svc.UpdateSelf(c.Request().Context(), id, model.UserPatch{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return apperrors.ToEcho(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateAdmin godoc
// @Summary Grant or revoke admin rights
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateAdminRequest true "Admin flag"
// @Success 200 {object} model.User
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /users/admin/{id} [patch]
func (h *UserHandler) UpdateAdmin(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateAdminRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.svc.UpdateAdminFlag(c.Request().Context(), id, *req.IsAdmin)
	if err != nil {
		return apperrors.ToEcho(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Delete godoc
// @Summary Delete own account
// @Tags users
// @Produce plain
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {string} string
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	msg, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return apperrors.ToEcho(err)
	}
	return c.String(http.StatusOK, msg)
}
