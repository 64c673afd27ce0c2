package reviewer

import (
	"errors"
	"net/http"

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

// RegisterPublicRoutes mounts the sign-in endpoint outside the
// authenticated group; there is no token yet at sign-in time.
func (h *Handler) RegisterPublicRoutes(public *echo.Group) {
	public.POST("/signin", h.SignIn)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/session", h.GetSession, auth.RequireRole("reviewer"))
	api.GET("/reviewers", h.ListReviewers, auth.RequireRole("admin"))
}

type signInRequest struct {
	ReviewerID  string `json:"reviewer_id"`
	DisplayName string `json:"display_name"`
}

type signInResponse struct {
	Token    string    `json:"token"`
	Reviewer *Reviewer `json:"reviewer"`
}

func (h *Handler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, rev, err := h.svc.SignIn(c.Request().Context(), req.ReviewerID, req.DisplayName)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, signInResponse{Token: token, Reviewer: rev})
}

func (h *Handler) GetSession(c echo.Context) error {
	rid := auth.ReviewerIDFromContext(c.Request().Context())
	if rid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no reviewer identity")
	}
	rev, err := h.svc.GetReviewer(c.Request().Context(), rid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Dev identities have no stored row; echo the claims only.
			return c.JSON(http.StatusOK, map[string]interface{}{
				"reviewer_id": rid,
				"roles":       auth.RolesFromContext(c.Request().Context()),
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"reviewer_id": rev.ReviewerID,
		"reviewer":    rev,
		"roles":       auth.RolesFromContext(c.Request().Context()),
	})
}

func (h *Handler) ListReviewers(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListReviewers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
