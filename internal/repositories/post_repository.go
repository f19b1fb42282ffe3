package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/connectly/backend/internal/apperrors"
	"github.com/connectly/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations. The
// membership operations (likes, shares, comment refs) are single-document
// atomic updates so concurrent calls from different actors never lose each
// other's writes.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetPostsByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Post, error)
	GetVisiblePosts(ctx context.Context, skip, limit int64) ([]models.Post, int64, error)
	GetFeedPosts(ctx context.Context, authors []primitive.ObjectID, skip, limit int64) ([]models.Post, int64, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, post *models.Post) error
	SoftDeletePost(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	AddShare(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	AddCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error
	RemoveCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error
	MarkReported(ctx context.Context, id primitive.ObjectID) (bool, error)
	DismissReport(ctx context.Context, id primitive.ObjectID) error
	GetReportedPosts(ctx context.Context, skip, limit int64) ([]models.Post, int64, error)
	CountPosts(ctx context.Context) (int64, error)
	CountPostsSince(ctx context.Context, since time.Time) (int64, error)
	CountReportedPosts(ctx context.Context) (int64, error)
	CountPostsWithLikes(ctx context.Context) (int64, error)
	TotalLikes(ctx context.Context) (int64, error)
	CountActiveAuthorsSince(ctx context.Context, since time.Time) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// feedSort orders newest first with _id descending as a stable tiebreak.
var feedSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// CreatePost creates a new post document
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Shares == nil {
		post.Shares = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by id. The document is returned even when
// soft-deleted; callers decide whether a deleted post is visible.
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post: %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByAuthor retrieves an author's non-deleted posts, newest first
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Post, error) {
	posts := []models.Post{}
	cursor, err := r.collection.Find(ctx,
		bson.M{"author": author, "is_deleted": false},
		options.Find().SetSort(feedSort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *MongoPostRepository) findPage(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.Post, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	posts := []models.Post{}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// GetVisiblePosts retrieves a page of all non-deleted posts, newest first
func (r *MongoPostRepository) GetVisiblePosts(ctx context.Context, skip, limit int64) ([]models.Post, int64, error) {
	return r.findPage(ctx, bson.M{"is_deleted": false}, feedSort, skip, limit)
}

// GetFeedPosts retrieves a page of non-deleted posts authored by any of the
// given accounts, newest first.
func (r *MongoPostRepository) GetFeedPosts(ctx context.Context, authors []primitive.ObjectID, skip, limit int64) ([]models.Post, int64, error) {
	filter := bson.M{"author": bson.M{"$in": authors}, "is_deleted": false}
	return r.findPage(ctx, filter, feedSort, skip, limit)
}

// UpdatePost persists the editable fields of a post
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id primitive.ObjectID, post *models.Post) error {
	post.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"content":    post.Content,
		"images":     post.Images,
		"videos":     post.Videos,
		"tags":       post.Tags,
		"location":   post.Location,
		"updated_at": post.UpdatedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "is_deleted": false}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	return nil
}

// SoftDeletePost marks a post deleted without removing the document
func (r *MongoPostRepository) SoftDeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *MongoPostRepository) updateMembership(ctx context.Context, postID primitive.ObjectID, update bson.M) (*models.Post, error) {
	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": postID, "is_deleted": false}, update, opts).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post: %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &post, nil
}

// AddLike atomically adds userID to the like set and returns the updated post
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.updateMembership(ctx, postID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveLike atomically removes userID from the like set and returns the updated post
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.updateMembership(ctx, postID, bson.M{"$pull": bson.M{"likes": userID}})
}

// AddShare atomically records userID in the share set. A repeat add is a
// no-op; shares are never removed.
func (r *MongoPostRepository) AddShare(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.updateMembership(ctx, postID, bson.M{"$addToSet": bson.M{"shares": userID}})
}

// AddCommentRef appends a comment id to the post's top-level comment list
func (r *MongoPostRepository) AddCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$push": bson.M{"comments": commentID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	return nil
}

// RemoveCommentRef removes a comment id from the post's top-level comment list
func (r *MongoPostRepository) RemoveCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$pull": bson.M{"comments": commentID}})
	return err
}

// MarkReported flips the reported flag and counts the report, but only on
// the first transition from not-reported to reported. Returns whether this
// call was the counted one.
func (r *MongoPostRepository) MarkReported(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "is_reported": false},
		bson.M{"$set": bson.M{"is_reported": true}, "$inc": bson.M{"report_count": 1}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// DismissReport clears the reported flag and resets the counter
func (r *MongoPostRepository) DismissReport(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_reported": false, "report_count": 0}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	return nil
}

// GetReportedPosts retrieves a page of reported, non-deleted posts ordered
// by report count then recency.
func (r *MongoPostRepository) GetReportedPosts(ctx context.Context, skip, limit int64) ([]models.Post, int64, error) {
	sort := bson.D{{Key: "report_count", Value: -1}, {Key: "created_at", Value: -1}}
	return r.findPage(ctx, bson.M{"is_reported": true, "is_deleted": false}, sort, skip, limit)
}

// CountPosts counts non-deleted posts
func (r *MongoPostRepository) CountPosts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"is_deleted": false})
}

// CountPostsSince counts non-deleted posts created at or after the given time
func (r *MongoPostRepository) CountPostsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}, "is_deleted": false})
}

// CountReportedPosts counts reported, non-deleted posts
func (r *MongoPostRepository) CountReportedPosts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"is_reported": true, "is_deleted": false})
}

// CountPostsWithLikes counts non-deleted posts that have at least one like
func (r *MongoPostRepository) CountPostsWithLikes(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"likes.0": bson.M{"$exists": true}, "is_deleted": false})
}

// TotalLikes sums like-set sizes across all non-deleted posts
func (r *MongoPostRepository) TotalLikes(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"is_deleted": false}}},
		bson.D{{Key: "$project", Value: bson.M{"likes_count": bson.M{"$size": "$likes"}}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$likes_count"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}

// CountActiveAuthorsSince counts distinct accounts that authored a
// non-deleted post at or after the given time.
func (r *MongoPostRepository) CountActiveAuthorsSince(ctx context.Context, since time.Time) (int64, error) {
	authors, err := r.collection.Distinct(ctx, "author",
		bson.M{"created_at": bson.M{"$gte": since}, "is_deleted": false})
	if err != nil {
		return 0, err
	}
	return int64(len(authors)), nil
}
