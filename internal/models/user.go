package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account document stored in MongoDB. Followers,
// Following and Posts are denormalized back-references maintained by the
// social-graph and engagement services.
type User struct {
	ID             primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Username       string               `json:"username" bson:"username"`
	Email          string               `json:"email" bson:"email"`
	Password       string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	FullName       string               `json:"full_name" bson:"full_name"`
	Bio            string               `json:"bio,omitempty" bson:"bio,omitempty"`
	ProfilePicture string               `json:"profile_picture,omitempty" bson:"profile_picture,omitempty"`
	CoverPicture   string               `json:"cover_picture,omitempty" bson:"cover_picture,omitempty"`
	Followers      []primitive.ObjectID `json:"followers" bson:"followers"`
	Following      []primitive.ObjectID `json:"following" bson:"following"`
	Posts          []primitive.ObjectID `json:"posts" bson:"posts"`
	IsBlocked      bool                 `json:"is_blocked" bson:"is_blocked"`
	IsAdmin        bool                 `json:"is_admin,omitempty" bson:"is_admin"`
	FirebaseUID    string               `json:"firebase_uid,omitempty" bson:"firebase_uid,omitempty"`
	LastActive     time.Time            `json:"last_active" bson:"last_active"`
	CreatedAt      time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at" bson:"updated_at"`
}

// UserCompact is the author/actor projection embedded in feed, comment and
// notification responses.
type UserCompact struct {
	ID             primitive.ObjectID `json:"id" bson:"id"`
	Username       string             `json:"username" bson:"username"`
	FullName       string             `json:"full_name" bson:"full_name"`
	ProfilePicture string             `json:"profile_picture,omitempty" bson:"profile_picture,omitempty"`
}

// ToCompact returns the compact projection of the user.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2,max=60"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName       string `json:"full_name,omitempty" validate:"omitempty,min=2,max=60"`
	Bio            string `json:"bio,omitempty" validate:"omitempty,max=200"`
	ProfilePicture string `json:"profile_picture,omitempty" validate:"omitempty,url"`
	CoverPicture   string `json:"cover_picture,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID  string `json:"user_id"` // account ObjectID hex
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}
