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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ShiftRepository handles database operations related to shifts.
type ShiftRepository struct {
	collection *mongo.Collection
}

// NewShiftRepository creates a new instance of ShiftRepository.
func NewShiftRepository(db *mongo.Database) *ShiftRepository {
	return &ShiftRepository{
		collection: db.Collection("shifts"),
	}
}

// CreateShift inserts a new shift.
func (r *ShiftRepository) CreateShift(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	shift.CreatedAt = time.Now()
	shift.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, shift)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert shift into database")
		return nil, fmt.Errorf("failed to insert shift: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}

	shift.ID = insertedID
	logrus.WithField("shiftID", shift.ID.Hex()).Info("Shift inserted successfully")
	return shift, nil
}

// GetShiftByID retrieves a shift by its ID.
func (r *ShiftRepository) GetShiftByID(ctx context.Context, id primitive.ObjectID) (*models.Shift, error) {
	var shift models.Shift
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&shift)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("shift does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shift by id: %v", err)
	}
	return &shift, nil
}

// ReplaceShift overwrites the whole shift document. Callers must pass a
// complete shift with previous values merged forward so unspecified fields
// are never dropped.
func (r *ShiftRepository) ReplaceShift(ctx context.Context, id primitive.ObjectID, shift *models.Shift) error {
	shift.ID = id
	shift.UpdatedAt = time.Now()

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, shift)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"shiftID": id.Hex(),
			"error":   err,
		}).Error("Failed to replace shift")
		return fmt.Errorf("failed to replace shift: %v", err)
	}
	return nil
}

// DeleteShift deletes a shift.
func (r *ShiftRepository) DeleteShift(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete shift: %v", err)
	}
	logrus.WithField("shiftID", id.Hex()).Info("Shift deleted successfully")
	return nil
}

// ListShifts returns all shifts ordered by date.
func (r *ShiftRepository) ListShifts(ctx context.Context) ([]models.Shift, error) {
	return r.findShifts(ctx, bson.M{})
}

// ListShiftsByEmployee returns one employee's shifts ordered by date.
func (r *ShiftRepository) ListShiftsByEmployee(ctx context.Context, employeeID primitive.ObjectID) ([]models.Shift, error) {
	return r.findShifts(ctx, bson.M{"employee_id": employeeID})
}

func (r *ShiftRepository) findShifts(ctx context.Context, filter bson.M) ([]models.Shift, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %v", err)
	}
	defer cursor.Close(ctx)

	var shifts []models.Shift
	if err := cursor.All(ctx, &shifts); err != nil {
		return nil, fmt.Errorf("failed to decode shifts: %v", err)
	}
	return shifts, nil
}
