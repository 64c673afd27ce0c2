package labs

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akireview/akireview/internal/domain/admission"
	"github.com/akireview/akireview/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("reviewer"))
	read.GET("/cases/:case_id/labs", h.GetCaseSeries)

	write := api.Group("", auth.RequireRole("admin"))
	write.POST("/labs", h.CreateEvent)
	write.POST("/labs/bulk", h.CreateEvents)
	write.DELETE("/cases/:case_id/labs", h.ClearCase)
}

func (h *Handler) GetCaseSeries(c echo.Context) error {
	series, err := h.svc.SeriesForCase(c.Request().Context(), c.Param("case_id"))
	if err != nil {
		if errors.Is(err, admission.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, series)
}

func (h *Handler) CreateEvent(c echo.Context) error {
	var ev LabEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.RecordEvent(c.Request().Context(), &ev); err != nil {
		if errors.Is(err, admission.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, ev)
}

func (h *Handler) CreateEvents(c echo.Context) error {
	var events []*LabEvent
	if err := c.Bind(&events); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.RecordEvents(c.Request().Context(), events); err != nil {
		if errors.Is(err, admission.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]int{"created": len(events)})
}

func (h *Handler) ClearCase(c echo.Context) error {
	if err := h.svc.ClearCase(c.Request().Context(), c.Param("case_id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
