package phenopacket

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oncopacket/oncopacket/internal/domain/terminology"
	"github.com/oncopacket/oncopacket/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/phenopackets")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

// Create builds a phenopacket from a case and stores it when storage is
// configured. Without storage the built phenopacket is returned with 200.
func (h *Handler) Create(c echo.Context) error {
	var in Case
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	p, err := h.svc.Build(ctx, &in)
	if err != nil {
		return buildError(err)
	}
	if !h.svc.HasRepository() {
		return c.JSON(http.StatusOK, p)
	}
	if err := h.svc.Save(ctx, p); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("subject_id"), pg.Limit, pg.Offset)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg, c.Request().URL.Path))
}

// buildError maps conversion failures. Unmapped sites are well-formed
// requests carrying data the tables cannot code.
func buildError(err error) error {
	if errors.Is(err, terminology.ErrLookupFailure) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func storeError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "phenopacket not found")
	case errors.Is(err, ErrNoRepository):
		return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
