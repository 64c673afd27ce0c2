package admission

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/akireview/akireview/internal/platform/auth"
	"github.com/akireview/akireview/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// All case routes key on the human-facing case_id, never the row uuid.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("reviewer"))
	read.GET("/cases", h.ListCases)
	read.GET("/cases/:case_id", h.GetCase)
	read.GET("/cases/:case_id/summary", h.GetSummary)

	write := api.Group("", auth.RequireRole("admin"))
	write.POST("/cases", h.CreateCase)
	write.PUT("/cases/:case_id", h.UpdateCase)
	write.DELETE("/cases/:case_id", h.DeleteCase)
}

func (h *Handler) ListCases(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAdmissions(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetCase(c echo.Context) error {
	a, err := h.svc.GetByCaseID(c.Request().Context(), c.Param("case_id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) GetSummary(c echo.Context) error {
	step := 1
	if raw := c.QueryParam("step"); raw != "" {
		var err error
		if step, err = strconv.Atoi(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid step")
		}
	}
	text, err := h.svc.SummaryForCase(c.Request().Context(), c.Param("case_id"), step)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"case_id": c.Param("case_id"),
		"step":    step,
		"text":    text,
	})
}

func (h *Handler) CreateCase(c echo.Context) error {
	var a Admission
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateAdmission(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateCase(c echo.Context) error {
	existing, err := h.svc.GetByCaseID(c.Request().Context(), c.Param("case_id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	var a Admission
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = existing.ID
	a.CaseID = existing.CaseID
	if err := h.svc.UpdateAdmission(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteCase(c echo.Context) error {
	existing, err := h.svc.GetByCaseID(c.Request().Context(), c.Param("case_id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.svc.DeleteAdmission(c.Request().Context(), existing.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
