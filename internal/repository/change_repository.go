package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/adilzhanb/shiftdesk/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChangeRepository appends audit records. The changes collection is
// append-only; nothing here updates or deletes.
type ChangeRepository struct {
	collection *mongo.Collection
}

func NewChangeRepository(db *mongo.Database) *ChangeRepository {
	return &ChangeRepository{collection: db.Collection("changes")}
}

// AppendChange writes one audit record. The timestamp is assigned here, at
// write time.
func (r *ChangeRepository) AppendChange(ctx context.Context, change *models.Change) error {
	change.Timestamp = time.Now()

	_, err := r.collection.InsertOne(ctx, change)
	if err != nil {
		logrus.WithError(err).Error("Failed to append change record")
		return fmt.Errorf("failed to append change record: %v", err)
	}
	return nil
}

// GetChangesBySubject returns the audit trail for one subject, newest first.
func (r *ChangeRepository) GetChangesBySubject(ctx context.Context, subjectID primitive.ObjectID) ([]models.Change, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"subject_id": subjectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch changes: %v", err)
	}
	defer cursor.Close(ctx)

	var changes []models.Change
	if err := cursor.All(ctx, &changes); err != nil {
		return nil, fmt.Errorf("failed to decode changes: %v", err)
	}
	return changes, nil
}
