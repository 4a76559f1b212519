package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ChangePut    = "PUT"
	ChangePatch  = "PATCH"
	ChangeDelete = "DELETE"
)

const (
	EntityShift = "shift"
	EntityGroup = "group"
	EntityUser  = "user"
)

// Change is one append-only audit record: what kind of mutation happened,
// who did it, to whom, and the field values before and after. Records are
// never updated or deleted.
type Change struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type      string             `bson:"type" json:"type"`
	Entity    string             `bson:"entity" json:"entity"`
	ActorID   primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	SubjectID primitive.ObjectID `bson:"subject_id" json:"subject_id"`
	Before    bson.M             `bson:"before,omitempty" json:"before,omitempty"`
	After     bson.M             `bson:"after,omitempty" json:"after,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
