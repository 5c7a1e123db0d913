package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"hotel/internal/db"
	"hotel/internal/logging"
)

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	db  *gorm.DB
	log *logging.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(gormDB *gorm.DB, log *logging.Logger) *HealthHandler {
	return &HealthHandler{db: gormDB, log: log.With("component", "health")}
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// Check godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, h.db); err != nil {
		h.log.Error("database ping failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
