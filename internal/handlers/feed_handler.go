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

// postView is a post decorated with a compact author profile for list responses.
type postView struct {
	models.Post
	AuthorInfo *models.UserCompact `json:"author_info,omitempty"`
}

// attachAuthors resolves the author of each post into a compact profile.
// Posts whose author no longer resolves are returned without one.
func attachAuthors(ctx context.Context, users repositories.UserRepository, posts []models.Post) ([]postView, error) {
	ids := make([]primitive.ObjectID, 0, len(posts))
	seen := make(map[primitive.ObjectID]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.Author]; !ok {
			seen[p.Author] = struct{}{}
			ids = append(ids, p.Author)
		}
	}

	byID := make(map[primitive.ObjectID]models.UserCompact, len(ids))
	if len(ids) > 0 {
		authors, err := users.GetUsersByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, a := range authors {
			byID[a.ID] = a.ToCompact()
		}
	}

	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		view := postView{Post: p}
		if compact, ok := byID[p.Author]; ok {
			view.AuthorInfo = &compact
		}
		views = append(views, view)
	}
	return views, nil
}

// FeedHandler serves the follow-based home timeline.
type FeedHandler struct {
	graph *services.SocialGraphService
	users repositories.UserRepository
}

func NewFeedHandler(graph *services.SocialGraphService, users repositories.UserRepository) *FeedHandler {
	return &FeedHandler{graph: graph, users: users}
}

func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

func (h *FeedHandler) GetFeed(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	page, limit := pageParams(c, 10)

	ctx := c.Request().Context()
	posts, pagination, err := h.graph.Feed(ctx, accountID, page, limit)
	if err != nil {
		return httpError(err)
	}
	views, err := attachAuthors(ctx, h.users, posts)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": views, "pagination": pagination})
}
