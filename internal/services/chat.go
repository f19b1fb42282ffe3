package services

import (
	"context"

	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/repositories"
	"github.com/connectly/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatService owns direct messages and conversation listings.
type ChatService struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	notifier *Notifier
	events   EventPublisher
}

// NewChatService creates a new ChatService
func NewChatService(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, notifier *Notifier, events EventPublisher) *ChatService {
	if events == nil {
		events = NopPublisher{}
	}
	return &ChatService{messages: messageRepo, users: userRepo, notifier: notifier, events: events}
}

// SendMessage persists a direct message to an existing receiver, notifies
// them and pushes the message over the realtime channel.
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID primitive.ObjectID, content, messageType, mediaURL string) (*models.Message, error) {
	if _, err := s.users.GetUserByID(ctx, receiverID); err != nil {
		return nil, err
	}

	message := &models.Message{
		Sender:      senderID,
		Receiver:    receiverID,
		Content:     content,
		MessageType: messageType,
		MediaURL:    mediaURL,
	}
	if err := s.messages.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	sender, err := s.users.GetUserByID(ctx, senderID)
	senderName := "Someone"
	if err == nil {
		senderName = sender.Username
	}
	s.notifier.Dispatch(ctx, receiverID, models.NotificationMessage, senderID,
		senderName+" sent you a message", NotificationRefs{Message: &message.ID})
	s.events.PublishTo(receiverID.Hex(), EventReceiveMessage, message)

	logger.L().Info().Str("sender", senderID.Hex()).Str("receiver", receiverID.Hex()).Msg("message sent")
	return message, nil
}

// GetMessages returns a page of the conversation with the peer, oldest
// first, and marks the peer's unread messages as read (false to true only).
func (s *ChatService) GetMessages(ctx context.Context, userID, peerID primitive.ObjectID, page, pageSize int) ([]models.Message, error) {
	skip := int64((page - 1) * pageSize)
	messages, err := s.messages.GetConversation(ctx, userID, peerID, skip, int64(pageSize))
	if err != nil {
		return nil, err
	}

	if err := s.messages.MarkConversationRead(ctx, peerID, userID); err != nil {
		logger.L().Warn().Err(err).Str("user", userID.Hex()).Msg("mark conversation read failed")
	}
	return messages, nil
}

// Conversations returns the account's conversation list sorted by last activity
func (s *ChatService) Conversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	return s.messages.GetConversations(ctx, userID)
}

// DeleteMessage soft-deletes one of the account's own sent messages
func (s *ChatService) DeleteMessage(ctx context.Context, userID, messageID primitive.ObjectID) error {
	return s.messages.SoftDeleteMessage(ctx, messageID, userID)
}
