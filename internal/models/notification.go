package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is one fanout target: a recipient set plus a human-readable
// title/body pair. Persisted independently of push delivery.
type Notification struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Users     []primitive.ObjectID `bson:"users" json:"users"`
	Title     string               `bson:"title" json:"title"`
	Body      string               `bson:"body" json:"body"`
	ReadBy    []primitive.ObjectID `bson:"read_by,omitempty" json:"read_by,omitempty"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time            `bson:"expires_at" json:"expires_at"` // For auto-deletion after 30 days
}
