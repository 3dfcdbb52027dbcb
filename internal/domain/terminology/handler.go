package terminology

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler provides REST endpoints for term normalization.
type Handler struct {
	norm *Normalizer
}

// NewHandler creates a new terminology handler.
func NewHandler(norm *Normalizer) *Handler {
	return &Handler{norm: norm}
}

// RegisterRoutes registers terminology routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/terminology")
	g.GET("/:domain", h.Normalize)
	g.GET("/:domain/labels", h.Labels)
}

// Normalize handles GET /api/v1/terminology/:domain?value=...
func (h *Handler) Normalize(c echo.Context) error {
	domain, err := ParseDomain(c.Param("domain"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	values, ok := c.QueryParams()["value"]
	if !ok || len(values) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'value' is required")
	}
	raw := values[0]

	resp, err := h.norm.Resolve(domain, raw)
	if err != nil {
		if errors.Is(err, ErrLookupFailure) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

// Labels handles GET /api/v1/terminology/:domain/labels
func (h *Handler) Labels(c echo.Context) error {
	domain, err := ParseDomain(c.Param("domain"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.norm.Table(domain)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"domain": domain,
		"total":  t.Len(),
		"labels": t.Keys(),
	})
}
