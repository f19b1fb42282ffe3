package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/connectly/backend/internal/apperrors"
	"github.com/connectly/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserFilter narrows the admin account listing.
type UserFilter struct {
	Search  string
	Blocked *bool
}

// ProfileUpdate carries the profile fields an account may change. Empty
// fields are left untouched.
type ProfileUpdate struct {
	FullName       string
	Bio            string
	ProfilePicture string
	CoverPicture   string
}

// UserRepository defines the interface for account data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error)
	SetLastActive(ctx context.Context, id primitive.ObjectID) error
	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	AddFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error
	AddPostRef(ctx context.Context, userID, postID primitive.ObjectID) error
	RemovePostRef(ctx context.Context, userID, postID primitive.ObjectID) error
	SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error
	SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error)
	ListUsers(ctx context.Context, filter UserFilter, skip, limit int64) ([]models.User, int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountUsersSince(ctx context.Context, since time.Time) (int64, error)
	CountBlockedUsers(ctx context.Context) (int64, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new account document
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.LastActive = user.CreatedAt
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Posts == nil {
		user.Posts = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves an account by its id
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves an account by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByUsernameOrEmail retrieves an account matching either the username
// or the email, used for the uniqueness check at registration.
func (r *MongoUserRepository) GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}})
}

// GetUserByFirebaseUID retrieves an account linked to a Firebase UID
func (r *MongoUserRepository) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebase_uid": uid})
}

// GetUsersByIDs retrieves the accounts whose ids are in the given set
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile applies a partial profile update and returns the updated account
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if update.FullName != "" {
		set["full_name"] = update.FullName
	}
	if update.Bio != "" {
		set["bio"] = update.Bio
	}
	if update.ProfilePicture != "" {
		set["profile_picture"] = update.ProfilePicture
	}
	if update.CoverPicture != "" {
		set["cover_picture"] = update.CoverPicture
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// SetLastActive stamps the account's last activity time
func (r *MongoUserRepository) SetLastActive(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_active": time.Now()}})
	return err
}

func (r *MongoUserRepository) updateSet(ctx context.Context, userID primitive.ObjectID, op, field string, value primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{op: bson.M{field: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	return nil
}

// AddFollower adds followerID to the account's followers set
func (r *MongoUserRepository) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$addToSet", "followers", followerID)
}

// RemoveFollower removes followerID from the account's followers set
func (r *MongoUserRepository) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$pull", "followers", followerID)
}

// AddFollowing adds followingID to the account's following set
func (r *MongoUserRepository) AddFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$addToSet", "following", followingID)
}

// RemoveFollowing removes followingID from the account's following set
func (r *MongoUserRepository) RemoveFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$pull", "following", followingID)
}

// AddPostRef appends a post id to the account's posts back-reference list
func (r *MongoUserRepository) AddPostRef(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$push", "posts", postID)
}

// RemovePostRef removes a post id from the account's posts back-reference list
func (r *MongoUserRepository) RemovePostRef(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateSet(ctx, userID, "$pull", "posts", postID)
}

// SetBlocked sets or clears the account's blocked flag
func (r *MongoUserRepository) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_blocked": blocked, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	return nil
}

// searchPattern escapes regex metacharacters so a user-supplied query
// always behaves as a literal substring match.
func searchPattern(query string) string {
	return regexp.QuoteMeta(query)
}

// SearchUsers performs a case-insensitive substring match on username or
// full name, excluding blocked accounts.
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	pattern := searchPattern(query)
	filter := bson.M{
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"username": bson.M{"$regex": pattern, "$options": "i"}},
				bson.M{"full_name": bson.M{"$regex": pattern, "$options": "i"}},
			}},
			bson.M{"is_blocked": false},
		},
	}

	users := []models.User{}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListUsers returns a page of accounts for the admin console
func (r *MongoUserRepository) ListUsers(ctx context.Context, filter UserFilter, skip, limit int64) ([]models.User, int64, error) {
	query := bson.M{}
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query["$or"] = bson.A{
			bson.M{"username": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"full_name": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if filter.Blocked != nil {
		query["is_blocked"] = *filter.Blocked
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	users := []models.User{}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CountUsers counts all accounts
func (r *MongoUserRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// CountUsersSince counts accounts created at or after the given time
func (r *MongoUserRepository) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}})
}

// CountBlockedUsers counts blocked accounts
func (r *MongoUserRepository) CountBlockedUsers(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"is_blocked": true})
}
