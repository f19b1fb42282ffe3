package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post. ParentComment is set for a reply
// (one level of nesting only) and must reference a comment on the same post.
type Comment struct {
	ID            primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Post          primitive.ObjectID   `json:"post" bson:"post"`
	Author        primitive.ObjectID   `json:"author" bson:"author"`
	Content       string               `json:"content" bson:"content"`
	ParentComment *primitive.ObjectID  `json:"parent_comment,omitempty" bson:"parent_comment,omitempty"`
	Likes         []primitive.ObjectID `json:"likes" bson:"likes"`
	Replies       []primitive.ObjectID `json:"replies" bson:"replies"`
	IsReported    bool                 `json:"is_reported" bson:"is_reported"`
	ReportCount   int                  `json:"report_count" bson:"report_count"`
	IsDeleted     bool                 `json:"is_deleted" bson:"is_deleted"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID          string `json:"post_id" validate:"required"`
	Content         string `json:"content" validate:"required,min=1,max=500"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
