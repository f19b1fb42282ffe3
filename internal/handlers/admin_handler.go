package handlers

import (
	"net/http"
	"strconv"

	"github.com/connectly/backend/internal/repositories"
	"github.com/connectly/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves the moderation and analytics endpoints. Routes are
// expected to be mounted behind the admin-only middleware.
type AdminHandler struct {
	moderation *services.ModerationService
}

func NewAdminHandler(moderation *services.ModerationService) *AdminHandler {
	return &AdminHandler{moderation: moderation}
}

func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/reports/posts", h.ReportedPosts)
	g.GET("/reports/comments", h.ReportedComments)
	g.POST("/reports/dismiss", h.DismissReport)
	g.DELETE("/posts/:id", h.RemovePost)
	g.DELETE("/comments/:id", h.RemoveComment)
	g.GET("/users", h.ListUsers)
	g.PUT("/users/:id/block", h.BlockUser)
	g.PUT("/users/:id/unblock", h.UnblockUser)
	g.GET("/analytics", h.Analytics)
}

func (h *AdminHandler) ReportedPosts(c echo.Context) error {
	page, limit := pageParams(c, 10)
	posts, pagination, err := h.moderation.ListReportedPosts(c.Request().Context(), page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts, "pagination": pagination})
}

func (h *AdminHandler) ReportedComments(c echo.Context) error {
	page, limit := pageParams(c, 10)
	comments, pagination, err := h.moderation.ListReportedComments(c.Request().Context(), page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments, "pagination": pagination})
}

type dismissReportRequest struct {
	Kind string `json:"kind" validate:"required,oneof=post comment"`
	ID   string `json:"id" validate:"required"`
}

// DismissReport clears the reported flag and counter without removing content.
func (h *AdminHandler) DismissReport(c echo.Context) error {
	var req dismissReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	id, err := parseObjectID(req.ID)
	if err != nil {
		return err
	}

	if err := h.moderation.DismissReport(c.Request().Context(), req.Kind, id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Report dismissed"})
}

func (h *AdminHandler) RemovePost(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.moderation.RemovePost(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post removed"})
}

func (h *AdminHandler) RemoveComment(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.moderation.RemoveComment(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment removed"})
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, limit := pageParams(c, 20)
	filter := repositories.UserFilter{Search: c.QueryParam("q")}
	if raw := c.QueryParam("blocked"); raw != "" {
		blocked, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid blocked filter")
		}
		filter.Blocked = &blocked
	}

	users, pagination, err := h.moderation.ListAccounts(c.Request().Context(), filter, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users, "pagination": pagination})
}

func (h *AdminHandler) BlockUser(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.moderation.BlockAccount(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User blocked"})
}

func (h *AdminHandler) UnblockUser(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.moderation.UnblockAccount(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User unblocked"})
}

// Analytics returns platform totals plus activity for the requested period
// (1d, 7d, 30d or 90d, defaulting to 7d).
func (h *AdminHandler) Analytics(c echo.Context) error {
	report, err := h.moderation.Analytics(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}
