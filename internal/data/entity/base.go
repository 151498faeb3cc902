package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base carries the id and timestamps every top-level document has.
type Base struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewBase stamps a fresh id and both timestamps.
func NewBase(now time.Time) Base {
	return Base{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
