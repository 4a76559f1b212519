package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adilzhanb/shiftdesk/internal/apperrors"
	"github.com/adilzhanb/shiftdesk/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GroupRepository handles database operations related to chat groups.
type GroupRepository struct {
	collection *mongo.Collection
}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{
		collection: db.Collection("groups"),
	}
}

// CreateGroup inserts a new group.
func (r *GroupRepository) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, group)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert group into database")
		return nil, fmt.Errorf("failed to insert group: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}

	group.ID = insertedID
	logrus.WithField("groupID", group.ID.Hex()).Info("Group inserted successfully")
	return group, nil
}

// GetGroupByID retrieves a group by its ID.
func (r *GroupRepository) GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var group models.Group
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("group does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group by id: %v", err)
	}
	return &group, nil
}

// UpdateGroupInfo rewrites name and description, keeping membership intact.
func (r *GroupRepository) UpdateGroupInfo(ctx context.Context, id primitive.ObjectID, name, description string) error {
	update := bson.M{
		"name":        name,
		"description": description,
		"updated_at":  time.Now(),
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("failed to update group: %v", err)
	}
	return nil
}

// AddMember adds a user to the member set atomically.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": groupID},
		bson.M{"$addToSet": bson.M{"members": userID}}, // avoid duplicates
	)
	if err != nil {
		return fmt.Errorf("failed to add group member: %v", err)
	}
	return nil
}

// RemoveMember removes a user from the member set atomically.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": groupID},
		bson.M{"$pull": bson.M{"members": userID}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %v", err)
	}
	return nil
}

// DeleteGroup deletes a group.
func (r *GroupRepository) DeleteGroup(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete group: %v", err)
	}
	logrus.WithField("groupID", id.Hex()).Info("Group deleted successfully")
	return nil
}
