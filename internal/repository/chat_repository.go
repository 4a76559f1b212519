package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/adilzhanb/shiftdesk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRepository stores 1:1 and group chat messages in one collection.
type ChatRepository struct {
	collection *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{collection: db.Collection("messages")}
}

// InsertMessage appends a message.
func (r *ChatRepository) InsertMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	msg.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %v", err)
	}
	msg.ID = result.InsertedID.(primitive.ObjectID)
	return msg, nil
}

// GetThreadMessages returns a 1:1 thread in chronological order.
func (r *ChatRepository) GetThreadMessages(ctx context.Context, threadID string) ([]models.Message, error) {
	return r.findMessages(ctx, bson.M{"thread_id": threadID})
}

// GetGroupMessages returns a group's messages in chronological order.
func (r *ChatRepository) GetGroupMessages(ctx context.Context, groupID primitive.ObjectID) ([]models.Message, error) {
	return r.findMessages(ctx, bson.M{"group_id": groupID})
}

func (r *ChatRepository) findMessages(ctx context.Context, filter bson.M) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %v", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %v", err)
	}
	return messages, nil
}
