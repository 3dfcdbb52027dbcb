package duration

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the converter over HTTP.
type Handler struct{}

// NewHandler creates a new duration handler.
func NewHandler() *Handler { return &Handler{} }

// RegisterRoutes registers duration routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/duration", h.Convert)
}

// Response is returned by GET /api/v1/duration.
type Response struct {
	Days     string `json:"days"`
	Duration string `json:"iso8601duration"`
}

// Convert handles GET /api/v1/duration?days=N.
func (h *Handler) Convert(c echo.Context) error {
	days := c.QueryParam("days")
	if days == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "days is required")
	}
	d, err := FromString(days)
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, Response{Days: days, Duration: d})
}
