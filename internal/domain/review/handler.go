package review

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/akireview/akireview/internal/domain/admission"
	"github.com/akireview/akireview/internal/platform/auth"
	"github.com/akireview/akireview/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("reviewer"))
	g.POST("/reviews/step1", h.SaveStep1)
	g.POST("/reviews/step2", h.SaveStep2)
	g.GET("/reviews/progress", h.GetProgress)
	g.GET("/reviews/resume", h.Resume)
	g.GET("/reviews", h.ListReviews)
}

func (h *Handler) reviewerID(c echo.Context) (string, error) {
	rid := auth.ReviewerIDFromContext(c.Request().Context())
	if rid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "no reviewer identity")
	}
	return rid, nil
}

func (h *Handler) SaveStep1(c echo.Context) error {
	rid, err := h.reviewerID(c)
	if err != nil {
		return err
	}
	var a Step1Answers
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.SaveStep1(c.Request().Context(), rid, a)
	if err != nil {
		return saveError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) SaveStep2(c echo.Context) error {
	rid, err := h.reviewerID(c)
	if err != nil {
		return err
	}
	var a Step2Answers
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.SaveStep2(c.Request().Context(), rid, a)
	if err != nil {
		return saveError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetProgress(c echo.Context) error {
	rid, err := h.reviewerID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Progress(c.Request().Context(), rid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Resume(c echo.Context) error {
	rid, err := h.reviewerID(c)
	if err != nil {
		return err
	}
	caseID := c.QueryParam("case_id")
	if caseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "case_id is required")
	}
	step := 1
	if raw := c.QueryParam("step"); raw != "" {
		if step, err = strconv.Atoi(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid step")
		}
	}
	state, err := h.svc.Resume(c.Request().Context(), rid, caseID, step)
	if err != nil {
		return saveError(err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *Handler) ListReviews(c echo.Context) error {
	rid, err := h.reviewerID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByReviewer(c.Request().Context(), rid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func saveError(err error) error {
	switch {
	case errors.Is(err, admission.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "case not found")
	case errors.Is(err, ErrStepOneRequired):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
