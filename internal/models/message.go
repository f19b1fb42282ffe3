package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message types accepted on the wire.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
	MessageTypeFile  = "file"
)

// Message represents a direct message between two accounts. IsRead only
// ever transitions false to true.
type Message struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Sender      primitive.ObjectID `json:"sender" bson:"sender"`
	Receiver    primitive.ObjectID `json:"receiver" bson:"receiver"`
	Content     string             `json:"content" bson:"content"`
	MessageType string             `json:"message_type" bson:"message_type"`
	MediaURL    string             `json:"media_url,omitempty" bson:"media_url,omitempty"`
	IsRead      bool               `json:"is_read" bson:"is_read"`
	ReadAt      *time.Time         `json:"read_at,omitempty" bson:"read_at,omitempty"`
	IsDeleted   bool               `json:"is_deleted" bson:"is_deleted"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// SendMessageRequest defines the request body for sending a direct message
type SendMessageRequest struct {
	ReceiverID  string `json:"receiver_id" validate:"required"`
	Content     string `json:"content" validate:"required,min=1,max=1000"`
	MessageType string `json:"message_type,omitempty" validate:"omitempty,oneof=text image video file"`
	MediaURL    string `json:"media_url,omitempty" validate:"omitempty,url"`
}

// Conversation is one row of the conversation listing: the peer account,
// the most recent message exchanged with them and how many of their
// messages are still unread.
type Conversation struct {
	Peer        UserCompact `json:"user" bson:"user"`
	LastMessage Message     `json:"last_message" bson:"last_message"`
	UnreadCount int         `json:"unread_count" bson:"unread_count"`
}
