package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a content item stored in MongoDB. Likes and Shares hold
// the ids of the accounts that performed the action; Comments mirrors the
// top-level comments of the post. IsDeleted marks a soft delete: the
// document stays in the collection but is excluded from every listing.
type Post struct {
	ID          primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Author      primitive.ObjectID   `json:"author" bson:"author"`
	Content     string               `json:"content" bson:"content"`
	Images      []string             `json:"images,omitempty" bson:"images,omitempty"`
	Videos      []string             `json:"videos,omitempty" bson:"videos,omitempty"`
	Tags        []string             `json:"tags,omitempty" bson:"tags,omitempty"`
	Location    string               `json:"location,omitempty" bson:"location,omitempty"`
	Likes       []primitive.ObjectID `json:"likes" bson:"likes"`
	Shares      []primitive.ObjectID `json:"shares" bson:"shares"`
	Comments    []primitive.ObjectID `json:"comments" bson:"comments"`
	IsReported  bool                 `json:"is_reported" bson:"is_reported"`
	ReportCount int                  `json:"report_count" bson:"report_count"`
	IsDeleted   bool                 `json:"is_deleted" bson:"is_deleted"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content  string   `json:"content" validate:"required,min=1,max=2000"`
	Images   []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Videos   []string `json:"videos,omitempty" validate:"omitempty,dive,url"`
	Tags     []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	Location string   `json:"location,omitempty" validate:"omitempty,max=120"`
}

// UpdatePostRequest defines the request body for updating an existing post.
// Only the supplied fields change.
type UpdatePostRequest struct {
	Content  string   `json:"content,omitempty" validate:"omitempty,min=1,max=2000"`
	Images   []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Videos   []string `json:"videos,omitempty" validate:"omitempty,dive,url"`
	Tags     []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	Location string   `json:"location,omitempty" validate:"omitempty,max=120"`
}
