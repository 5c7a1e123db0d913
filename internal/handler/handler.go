package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "hotel/internal/errors"
)

// bindAndValidate decodes the request body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.BadRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(req); err != nil {
		return apperrors.BadRequest(err.Error(), "VALIDATION_ERROR")
	}
	return nil
}

// pathID parses the numeric path parameter name.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest("invalid id", "INVALID_ID")
	}
	return uint(id), nil
}
