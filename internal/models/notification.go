package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification categories.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMention = "mention"
	NotificationShare   = "share"
	NotificationMessage = "message"
)

// Notification represents a persisted notification for an account. The
// recipient is never the actor; self-notifications are suppressed at
// dispatch time.
type Notification struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	User      primitive.ObjectID  `json:"user" bson:"user"` // recipient
	Type      string              `json:"type" bson:"type"`
	From      primitive.ObjectID  `json:"from" bson:"from"` // actor
	Post      *primitive.ObjectID `json:"post,omitempty" bson:"post,omitempty"`
	Comment   *primitive.ObjectID `json:"comment,omitempty" bson:"comment,omitempty"`
	Message   *primitive.ObjectID `json:"message,omitempty" bson:"message,omitempty"`
	Content   string              `json:"content" bson:"content"`
	IsRead    bool                `json:"is_read" bson:"is_read"`
	ReadAt    *time.Time          `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
}
