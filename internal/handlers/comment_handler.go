package handlers

import (
	"context"
	"net/http"

	"github.com/connectly/backend/internal/middleware"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/repositories"
	"github.com/connectly/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// commentView is a comment decorated with its author and resolved replies.
type commentView struct {
	models.Comment
	AuthorInfo  *models.UserCompact `json:"author_info,omitempty"`
	RepliesInfo []commentView       `json:"replies_info,omitempty"`
}

// CommentHandler serves comments and replies on posts.
type CommentHandler struct {
	engagement *services.EngagementService
	users      repositories.UserRepository
}

func NewCommentHandler(engagement *services.EngagementService, users repositories.UserRepository) *CommentHandler {
	return &CommentHandler{engagement: engagement, users: users}
}

func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments", h.AddComment)
	g.GET("/posts/:id/comments", h.ListComments)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/like", h.ToggleLike)
	g.POST("/comments/:id/report", h.ReportComment)
}

func (h *CommentHandler) AddComment(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	postID, err := parseObjectID(req.PostID)
	if err != nil {
		return err
	}
	var parentID *primitive.ObjectID
	if req.ParentCommentID != "" {
		id, err := parseObjectID(req.ParentCommentID)
		if err != nil {
			return err
		}
		parentID = &id
	}

	comment, err := h.engagement.AddComment(c.Request().Context(), accountID, postID, req.Content, parentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// ListComments returns the top-level comments of a post with their replies
// and author profiles resolved.
func (h *CommentHandler) ListComments(c echo.Context) error {
	postID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}
	page, limit := pageParams(c, 10)

	ctx := c.Request().Context()
	comments, pagination, err := h.engagement.ListComments(ctx, postID, page, limit)
	if err != nil {
		return httpError(err)
	}

	views := make([]commentView, 0, len(comments))
	authorIDs := make([]primitive.ObjectID, 0, len(comments))
	for i := range comments {
		replies, err := h.engagement.Replies(ctx, &comments[i])
		if err != nil {
			return httpError(err)
		}
		view := commentView{Comment: comments[i]}
		for _, r := range replies {
			view.RepliesInfo = append(view.RepliesInfo, commentView{Comment: r})
			authorIDs = append(authorIDs, r.Author)
		}
		authorIDs = append(authorIDs, comments[i].Author)
		views = append(views, view)
	}
	if err := h.resolveAuthors(ctx, views, authorIDs); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"comments": views, "pagination": pagination})
}

func (h *CommentHandler) resolveAuthors(ctx context.Context, views []commentView, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	unique := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	authors, err := h.users.GetUsersByIDs(ctx, unique)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]models.UserCompact, len(authors))
	for _, a := range authors {
		byID[a.ID] = a.ToCompact()
	}
	for i := range views {
		if compact, ok := byID[views[i].Author]; ok {
			views[i].AuthorInfo = &compact
		}
		for j := range views[i].RepliesInfo {
			if compact, ok := byID[views[i].RepliesInfo[j].Author]; ok {
				views[i].RepliesInfo[j].AuthorInfo = &compact
			}
		}
	}
	return nil
}

func (h *CommentHandler) UpdateComment(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.engagement.UpdateComment(c.Request().Context(), accountID, id, req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.engagement.DeleteComment(c.Request().Context(), accountID, id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted"})
}

func (h *CommentHandler) ToggleLike(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	comment, liked, err := h.engagement.ToggleCommentLike(c.Request().Context(), accountID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked, "likes": len(comment.Likes)})
}

func (h *CommentHandler) ReportComment(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	count, err := h.engagement.ReportComment(c.Request().Context(), accountID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment reported", "report_count": count})
}
