package handlers

import (
	"net/http"

	"github.com/connectly/backend/internal/middleware"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/repositories"
	"github.com/connectly/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler serves post CRUD and engagement endpoints.
type PostHandler struct {
	engagement *services.EngagementService
	users      repositories.UserRepository
}

func NewPostHandler(engagement *services.EngagementService, users repositories.UserRepository) *PostHandler {
	return &PostHandler{engagement: engagement, users: users}
}

func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.ListPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/like", h.ToggleLike)
	g.POST("/posts/:id/share", h.SharePost)
	g.POST("/posts/:id/report", h.ReportPost)
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.engagement.CreatePost(c.Request().Context(), accountID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) ListPosts(c echo.Context) error {
	page, limit := pageParams(c, 10)

	ctx := c.Request().Context()
	posts, pagination, err := h.engagement.ListPosts(ctx, page, limit)
	if err != nil {
		return httpError(err)
	}
	views, err := attachAuthors(ctx, h.users, posts)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": views, "pagination": pagination})
}

func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.engagement.GetPost(ctx, id)
	if err != nil {
		return httpError(err)
	}
	views, err := attachAuthors(ctx, h.users, []models.Post{*post})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, views[0])
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.engagement.UpdatePost(c.Request().Context(), accountID, id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.engagement.DeletePost(c.Request().Context(), accountID, id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted"})
}

// ToggleLike likes the post when not yet liked and removes the like otherwise.
func (h *PostHandler) ToggleLike(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	post, liked, err := h.engagement.ToggleLike(c.Request().Context(), accountID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked, "likes": len(post.Likes)})
}

func (h *PostHandler) SharePost(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	post, err := h.engagement.SharePost(c.Request().Context(), accountID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"shares": len(post.Shares)})
}

func (h *PostHandler) ReportPost(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	count, err := h.engagement.ReportPost(c.Request().Context(), accountID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post reported", "report_count": count})
}
