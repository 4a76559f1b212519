package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a chat message. Exactly one of ReceiverID (1:1 chat) or
// GroupID (group chat) is set. 1:1 messages also carry a thread id derived
// from the sorted participant pair so both directions land in one thread.
type Message struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SenderID   primitive.ObjectID  `bson:"sender_id" json:"sender_id"`
	ReceiverID *primitive.ObjectID `bson:"receiver_id,omitempty" json:"receiver_id,omitempty"`
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	ThreadID   string              `bson:"thread_id,omitempty" json:"thread_id,omitempty"`
	Text       string              `bson:"text" json:"text"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}

// ThreadID builds the 1:1 thread key from the two participant ids,
// order-independent.
func ThreadID(a, b primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}
