package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "hotel/internal/errors"
	"hotel/internal/model"
	"hotel/internal/service"
)

// RoomHandler handles room inventory endpoints.
type RoomHandler struct {
	svc service.RoomService
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(svc service.RoomService) *RoomHandler {
	return &RoomHandler{svc: svc}
}

// RegisterRoomRequest represents a room registration request.
type RegisterRoomRequest struct {
	RoomNumber    string           `json:"roomNumber" validate:"required"`
	RoomType      string           `json:"roomType" validate:"required,oneof=SINGLE DOUBLE TWIN SUITE FAMILY"`
	Description   *string          `json:"description"`
	PricePerNight *decimal.Decimal `json:"pricePerNight" validate:"required" swaggertype:"number" minimum:"0" maximum:"99999999.99"`
}

// UpdateRoomRequest is a partial room update. Omitted fields are unchanged.
type UpdateRoomRequest struct {
	RoomNumber    *string          `json:"roomNumber" validate:"omitempty,min=1"`
	RoomType      *string          `json:"roomType" validate:"omitempty,oneof=SINGLE DOUBLE TWIN SUITE FAMILY"`
	Description   *string          `json:"description"`
	PricePerNight *decimal.Decimal `json:"pricePerNight" swaggertype:"number" minimum:"0" maximum:"99999999.99"`
}

// Register godoc
// @Summary Register a room
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RegisterRoomRequest true "Room data"
// @Success 201 {object} model.Room
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /rooms/register [post]
func (h *RoomHandler) Register(c echo.Context) error {
	var req RegisterRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	room, err := h.svc.Register(c.Request().Context(), service.RegisterRoomInput{
		RoomNumber:    req.RoomNumber,
		RoomType:      model.RoomType(req.RoomType),
		Description:   req.Description,
		PricePerNight: *req.PricePerNight,
	})
	if err != nil {
		return apperrors.ToEcho(err)
	}
	return c.JSON(http.StatusCreated, room)
}

// List godoc
// @Summary List rooms
// @Tags rooms
// @Produce json
// @Success 200 {array} model.Room
// @Router /rooms [get]
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.svc.List(c.Request().Context())
	if err != nil {
		return apperrors.ToEcho(err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get godoc
// @Summary Get room by id
// @Tags rooms
// @Produce json
// @Param id path int true "Room ID"
// @Success 200 {object} model.Room
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	room, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperrors.ToEcho(err)
	}
	return c.JSON(http.StatusOK, room)
}

// Update godoc
// @Summary Update a room
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param request body UpdateRoomRequest true "Fields to change"
// @Success 200 {object} model.Room
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /rooms/{id} [patch]
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	patch := model.RoomPatch{
		RoomNumber:    req.RoomNumber,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
	}
	if req.RoomType != nil {
		t := model.RoomType(*req.RoomType)
		patch.RoomType = &t
	}

	room, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return apperrors.ToEcho(err)
	}
	return c.JSON(http.StatusOK, room)
}

// Delete godoc
// @Summary Delete a room
// @Tags rooms
// @Produce plain
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {string} string
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Delete(c echo.Context) error {
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
