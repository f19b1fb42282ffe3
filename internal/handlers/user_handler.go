package handlers

import (
	"net/http"

	"github.com/connectly/backend/internal/middleware"
	"github.com/connectly/backend/internal/repositories"
	"github.com/connectly/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler serves public account profiles and the follow graph.
type UserHandler struct {
	users repositories.UserRepository
	posts repositories.PostRepository
	graph *services.SocialGraphService
}

func NewUserHandler(users repositories.UserRepository, posts repositories.PostRepository, graph *services.SocialGraphService) *UserHandler {
	return &UserHandler{users: users, posts: posts, graph: graph}
}

func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/search", h.Search)
	g.GET("/users/:id", h.GetUser)
	g.POST("/users/:id/follow", h.ToggleFollow)
	g.GET("/users/:id/followers", h.Followers)
	g.GET("/users/:id/following", h.Following)
}

// GetUser returns a public profile with the account's visible posts and counts.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.users.GetUserByID(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if user.IsBlocked {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	posts, err := h.posts.GetPostsByAuthor(ctx, user.ID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":  user,
		"posts": posts,
		"stats": echo.Map{
			"posts":     len(posts),
			"followers": len(user.Followers),
			"following": len(user.Following),
		},
	})
}

func (h *UserHandler) Search(c echo.Context) error {
	results, err := h.graph.SearchAccounts(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": results})
}

// ToggleFollow follows the target when not yet followed and unfollows otherwise.
func (h *UserHandler) ToggleFollow(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	targetID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	following, err := h.graph.Follow(c.Request().Context(), accountID, targetID)
	if err != nil {
		return httpError(err)
	}
	message := "User unfollowed"
	if following {
		message = "User followed"
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following, "message": message})
}

func (h *UserHandler) Followers(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}
	followers, err := h.graph.Followers(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"followers": followers})
}

func (h *UserHandler) Following(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}
	following, err := h.graph.Following(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}
