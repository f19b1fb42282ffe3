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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error)
	GetTopLevelByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, int64, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error
	SoftDeleteComment(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, commentID, userID primitive.ObjectID) (*models.Comment, error)
	RemoveLike(ctx context.Context, commentID, userID primitive.ObjectID) (*models.Comment, error)
	AddReplyRef(ctx context.Context, parentID, replyID primitive.ObjectID) error
	RemoveReplyRef(ctx context.Context, parentID, replyID primitive.ObjectID) error
	MarkReported(ctx context.Context, id primitive.ObjectID) (bool, error)
	DismissReport(ctx context.Context, id primitive.ObjectID) error
	GetReportedComments(ctx context.Context, skip, limit int64) ([]models.Comment, int64, error)
	CountComments(ctx context.Context) (int64, error)
	CountCommentsSince(ctx context.Context, since time.Time) (int64, error)
	CountReportedComments(ctx context.Context) (int64, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment creates a new comment document
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	if comment.Likes == nil {
		comment.Likes = []primitive.ObjectID{}
	}
	if comment.Replies == nil {
		comment.Replies = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by id, including soft-deleted ones;
// visibility is the caller's decision.
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("comment: %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByIDs retrieves the non-deleted comments whose ids are in the
// given set, oldest first (reply display order).
func (r *MongoCommentRepository) GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	comments := []models.Comment{}
	if len(ids) == 0 {
		return comments, nil
	}
	cursor, err := r.collection.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "is_deleted": false},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *MongoCommentRepository) findPage(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.Comment, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	comments := []models.Comment{}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// GetTopLevelByPost retrieves a page of the post's top-level comments,
// newest first.
func (r *MongoCommentRepository) GetTopLevelByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, int64, error) {
	filter := bson.M{"post": postID, "parent_comment": nil, "is_deleted": false}
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	return r.findPage(ctx, filter, sort, skip, limit)
}

// UpdateContent replaces the comment body
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	return nil
}

// SoftDeleteComment marks a comment deleted without removing the document
func (r *MongoCommentRepository) SoftDeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *MongoCommentRepository) updateMembership(ctx context.Context, commentID primitive.ObjectID, update bson.M) (*models.Comment, error) {
	var comment models.Comment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": commentID, "is_deleted": false}, update, opts).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("comment: %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &comment, nil
}

// AddLike atomically adds userID to the comment's like set
func (r *MongoCommentRepository) AddLike(ctx context.Context, commentID, userID primitive.ObjectID) (*models.Comment, error) {
	return r.updateMembership(ctx, commentID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveLike atomically removes userID from the comment's like set
func (r *MongoCommentRepository) RemoveLike(ctx context.Context, commentID, userID primitive.ObjectID) (*models.Comment, error) {
	return r.updateMembership(ctx, commentID, bson.M{"$pull": bson.M{"likes": userID}})
}

// AddReplyRef appends a reply id to the parent comment's reply list
func (r *MongoCommentRepository) AddReplyRef(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": parentID}, bson.M{"$push": bson.M{"replies": replyID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	return nil
}

// RemoveReplyRef removes a reply id from the parent comment's reply list
func (r *MongoCommentRepository) RemoveReplyRef(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": parentID}, bson.M{"$pull": bson.M{"replies": replyID}})
	return err
}

// MarkReported flips the reported flag and counts the report on the first
// transition only. Returns whether this call was the counted one.
func (r *MongoCommentRepository) MarkReported(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "is_reported": false},
		bson.M{"$set": bson.M{"is_reported": true}, "$inc": bson.M{"report_count": 1}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// DismissReport clears the reported flag and resets the counter
func (r *MongoCommentRepository) DismissReport(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_reported": false, "report_count": 0}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	return nil
}

// GetReportedComments retrieves a page of reported, non-deleted comments
// ordered by report count then recency.
func (r *MongoCommentRepository) GetReportedComments(ctx context.Context, skip, limit int64) ([]models.Comment, int64, error) {
	sort := bson.D{{Key: "report_count", Value: -1}, {Key: "created_at", Value: -1}}
	return r.findPage(ctx, bson.M{"is_reported": true, "is_deleted": false}, sort, skip, limit)
}

// CountComments counts non-deleted comments
func (r *MongoCommentRepository) CountComments(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"is_deleted": false})
}

// CountCommentsSince counts non-deleted comments created at or after the given time
func (r *MongoCommentRepository) CountCommentsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}, "is_deleted": false})
}

// CountReportedComments counts reported, non-deleted comments
func (r *MongoCommentRepository) CountReportedComments(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"is_reported": true, "is_deleted": false})
}
