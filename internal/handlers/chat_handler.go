package handlers

import (
	"net/http"

	"github.com/connectly/backend/internal/middleware"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ChatHandler serves direct messages and the conversation listing.
type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.POST("/chat/messages", h.SendMessage)
	g.GET("/chat/messages/:userId", h.GetMessages)
	g.GET("/chat/conversations", h.GetConversations)
	g.DELETE("/chat/messages/:id", h.DeleteMessage)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	receiverID, err := parseObjectID(req.ReceiverID)
	if err != nil {
		return err
	}

	message, err := h.chat.SendMessage(c.Request().Context(), accountID, receiverID, req.Content, req.MessageType, req.MediaURL)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, message)
}

// GetMessages returns the two-way history with a peer, oldest first, and
// marks the peer's messages as read.
func (h *ChatHandler) GetMessages(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	peerID, err := parseObjectID(c.Param("userId"))
	if err != nil {
		return err
	}
	page, limit := pageParams(c, 20)

	messages, err := h.chat.GetMessages(c.Request().Context(), accountID, peerID, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": messages})
}

func (h *ChatHandler) GetConversations(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	conversations, err := h.chat.Conversations(c.Request().Context(), accountID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": conversations})
}

func (h *ChatHandler) DeleteMessage(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.chat.DeleteMessage(c.Request().Context(), accountID, id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Message deleted"})
}
