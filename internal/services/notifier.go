package services

import (
	"context"

	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/repositories"
	"github.com/connectly/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationRefs carries the optional entity references attached to a
// notification.
type NotificationRefs struct {
	Post    *primitive.ObjectID
	Comment *primitive.ObjectID
	Message *primitive.ObjectID
}

// Notifier persists notifications triggered by engagement actions and
// pushes them over the realtime channel. Dispatch is best-effort: a
// persistence failure is logged and swallowed so it never aborts the
// action that triggered it.
type Notifier struct {
	notifications repositories.NotificationRepository
	events        EventPublisher
}

// NewNotifier creates a new Notifier
func NewNotifier(notificationRepo repositories.NotificationRepository, events EventPublisher) *Notifier {
	if events == nil {
		events = NopPublisher{}
	}
	return &Notifier{notifications: notificationRepo, events: events}
}

// Dispatch creates a notification for the recipient. Returns nil without
// creating anything when the recipient is the actor, or when persistence
// fails.
func (n *Notifier) Dispatch(ctx context.Context, recipient primitive.ObjectID, category string, actor primitive.ObjectID, content string, refs NotificationRefs) *models.Notification {
	if recipient == actor {
		return nil
	}

	notification := &models.Notification{
		User:    recipient,
		Type:    category,
		From:    actor,
		Content: content,
		Post:    refs.Post,
		Comment: refs.Comment,
		Message: refs.Message,
	}

	if err := n.notifications.CreateNotification(ctx, notification); err != nil {
		logger.L().Warn().Err(err).
			Str("category", category).
			Str("recipient", recipient.Hex()).
			Msg("notification dispatch failed")
		return nil
	}

	n.events.PublishTo(recipient.Hex(), EventNotification, notification)
	return notification
}
