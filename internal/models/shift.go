package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
)

// Shift is a single work shift assigned to one employee. The date is kept
// as the literal YYYY-MM-DD string the caller supplied so it reads back
// exactly as written, with no timezone drift.
type Shift struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID primitive.ObjectID `bson:"employee_id" json:"employee_id"`
	Date       string             `bson:"date" json:"date"`
	Time       string             `bson:"time" json:"time"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
