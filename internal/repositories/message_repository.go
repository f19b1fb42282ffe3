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

// MessageRepository defines the interface for direct-message data operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetConversation(ctx context.Context, a, b primitive.ObjectID, skip, limit int64) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, sender, receiver primitive.ObjectID) error
	SoftDeleteMessage(ctx context.Context, id, sender primitive.ObjectID) error
	GetConversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error)
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

// CreateMessage creates a new message document
func (r *MongoMessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	message.UpdatedAt = message.CreatedAt
	if message.MessageType == "" {
		message.MessageType = models.MessageTypeText
	}
	_, err := r.collection.InsertOne(ctx, message)
	return err
}

// GetConversation retrieves a page of the messages exchanged between two
// accounts, oldest first.
func (r *MongoMessageRepository) GetConversation(ctx context.Context, a, b primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"sender": a, "receiver": b},
			bson.M{"sender": b, "receiver": a},
		},
		"is_deleted": false,
	}

	messages := []models.Message{}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkConversationRead marks every unread message from sender to receiver
// as read. The read flag only ever moves false to true.
func (r *MongoMessageRepository) MarkConversationRead(ctx context.Context, sender, receiver primitive.ObjectID) error {
	now := time.Now()
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"sender": sender, "receiver": receiver, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}})
	return err
}

// SoftDeleteMessage marks a message deleted; only the sender may delete it
func (r *MongoMessageRepository) SoftDeleteMessage(ctx context.Context, id, sender primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "sender": sender, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("message: %w", apperrors.ErrNotFound)
	}
	return nil
}

// GetConversations aggregates the account's messages into one row per peer:
// the latest message and the number of their messages still unread, sorted
// by last activity.
func (r *MongoMessageRepository) GetConversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"$or":        bson.A{bson.M{"sender": userID}, bson.M{"receiver": userID}},
			"is_deleted": false,
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$cond": bson.M{
				"if":   bson.M{"$eq": bson.A{"$sender", userID}},
				"then": "$receiver",
				"else": "$sender",
			}},
			"last_message": bson.M{"$first": "$$ROOT"},
			"unread_count": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$receiver", userID}},
					bson.M{"$eq": bson.A{"$is_read", false}},
				}},
				1,
				0,
			}}},
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		bson.D{{Key: "$unwind", Value: "$user"}},
		bson.D{{Key: "$project", Value: bson.M{
			"user": bson.M{
				"id":              "$user._id",
				"username":        "$user.username",
				"full_name":       "$user.full_name",
				"profile_picture": "$user.profile_picture",
			},
			"last_message": 1,
			"unread_count": 1,
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "last_message.created_at", Value: -1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	conversations := []models.Conversation{}
	if err = cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}
